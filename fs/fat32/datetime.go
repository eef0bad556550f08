package fat32

import "time"

// FAT timestamps are split into a 16 bit date (year since 1980, month and
// day of month) and a
// 16 bit time with two second granularity, optionally refined by a tenths
// byte carrying 10 ms resolution.

// parseDate decodes a FAT date stamp:
//
//	Bits 0-4:  Day of month, valid value range 1-31 inclusive.
//	Bits 5-8:  Month of year, 1 = January, valid value range 1-12 inclusive.
//	Bits 9-15: Count of years from 1980, valid value range 0-127 inclusive.
//
// A day or month of 0 is unspecified; the zero time.Time is returned for
// it so time.Time.IsZero() works.
func parseDate(input uint16) time.Time {
	dayOfMonth := input & 0x1F
	monthOfYear := input & 0x1E0 >> 5
	yearSince1980 := input & 0xFE00 >> 9

	if dayOfMonth == 0 || monthOfYear == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(yearSince1980), time.Month(monthOfYear), int(dayOfMonth), 0, 0, 0, 0, time.UTC)
}

// parseTime decodes a FAT time stamp:
//
//	Bits 0-4:   2-second count, valid value range 0-29 inclusive.
//	Bits 5-10:  Minutes, valid value range 0-59 inclusive.
//	Bits 11-15: Hours, valid value range 0-23 inclusive.
//
// The tenths byte adds 0-199 counts of 10 ms on top of the 2 second
// granularity.
func parseTime(input uint16, tenths byte) (hour, minute, second, nanosecond int) {
	second = int(input&0x1F)*2 + int(tenths)/100
	minute = int(input & 0x7E0 >> 5)
	hour = int(input & 0xF800 >> 11)
	nanosecond = int(tenths) % 100 * int(10*time.Millisecond)
	return
}

// parseDateTime combines a FAT date and time stamp into one time.Time.
func parseDateTime(date, timeOfDay uint16, tenths byte) time.Time {
	day := parseDate(date)
	if day.IsZero() {
		return time.Time{}
	}

	hour, minute, second, nanosecond := parseTime(timeOfDay, tenths)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, nanosecond, time.UTC)
}

// serializeDate encodes the date part of t.
func serializeDate(t time.Time) uint16 {
	if t.IsZero() {
		return 0
	}

	t = t.UTC()
	year := t.Year() - 1980
	if year < 0 {
		year = 0
	}
	if year > 127 {
		year = 127
	}

	return uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

// serializeTime encodes the time part of t with two second granularity.
func serializeTime(t time.Time) uint16 {
	if t.IsZero() {
		return 0
	}

	t = t.UTC()
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}

// serializeTenths encodes the 10 ms remainder lost by serializeTime.
func serializeTenths(t time.Time) byte {
	if t.IsZero() {
		return 0
	}

	t = t.UTC()
	return byte(t.Second()%2*100 + t.Nanosecond()/int(10*time.Millisecond))
}
