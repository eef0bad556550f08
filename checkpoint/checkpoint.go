// Package checkpoint decorates errors with caller information so that a
// failure deep inside the filesystem or transport stack can be traced back
// without a debugger. Every error attached to a checkpoint stays visible to
// errors.Is and errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
)

// From wraps err in a checkpoint recording the caller's file and line.
// It returns nil if err is nil.
func From(err error) error {
	// io.EOF and io.ErrUnexpectedEOF have to stay identity-comparable,
	// see https://github.com/golang/go/issues/39155
	if err == io.EOF || err == io.ErrUnexpectedEOF || err == nil {
		return err
	}

	return newCheckpoint(nil, err, 2)
}

// Wrap records a checkpoint for prev and attaches err as an additional
// marker describing it. Returns nil if prev is nil. A typical use is to
// attach a predefined sentinel:
//
//	var ErrDeviceGone = errors.New("device gone")
//
//	if err := dev.Read(off, buf); err != nil {
//		return checkpoint.Wrap(err, ErrDeviceGone)
//	}
//
// Callers can then test with errors.Is for both ErrDeviceGone and whatever
// dev.Read returned.
func Wrap(prev, err error) error {
	if prev == io.EOF || prev == nil {
		return prev
	}

	return newCheckpoint(prev, err, 2)
}

func newCheckpoint(prev, err error, skip int) error {
	c := &checkpoint{
		err:  err,
		prev: prev,
	}

	if _, file, line, ok := runtime.Caller(skip); ok {
		c.location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	} else {
		c.location = "unknown"
	}

	return c
}

type checkpoint struct {
	err      error
	prev     error
	location string
}

func (c *checkpoint) Error() string {
	switch {
	case c.err == nil:
		return fmt.Sprintf("%s\n\t%v", c.location, c.prev)
	case c.prev == nil:
		return fmt.Sprintf("%s\n\t%v", c.location, c.err)
	default:
		return fmt.Sprintf("%s\n\t%v\n%v", c.location, c.err, c.prev)
	}
}

func (c *checkpoint) Unwrap() error {
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
