package fat32

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes the name and removes the combining marks, so
// "é" collapses to "e" before the 8.3 sanitization.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// validShortNameChar reports whether an uppercase character may appear in
// a short name unchanged.
func validShortNameChar(r rune) bool {
	if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune("$%'-_@~`!(){}^#&", r)
}

func sanitizeShortNamePart(part string, maxLen int) string {
	if folded, _, err := transform.String(stripAccents, part); err == nil {
		part = folded
	}
	part = strings.ToUpper(part)

	var builder strings.Builder
	for _, r := range part {
		if builder.Len() >= maxLen {
			break
		}
		if validShortNameChar(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteByte('_')
		}
	}

	return builder.String()
}

// GenerateShortName derives a DOS 8.3 name for the desired long name that
// does not collide with any short name already present in the directory.
//
// Collisions get a ~N suffix with growing N; from the fifth attempt on
// the stem is replaced by four hex digits hashed from the long name so
// the search space does not stay crowded around a popular prefix.
func GenerateShortName(name string, existing map[ShortName]*DirectoryEntry) ShortName {
	trimmed := strings.TrimRight(strings.TrimSpace(name), ".")

	stem := trimmed
	extension := ""
	if dot := strings.LastIndex(trimmed, "."); dot >= 0 {
		stem = trimmed[:dot]
		extension = trimmed[dot+1:]
	}

	stem = sanitizeShortNamePart(stem, 8)
	extension = sanitizeShortNamePart(extension, 3)
	if stem == "" {
		stem = "_"
	}

	candidate := NewShortName(stem, extension)
	if _, taken := existing[candidate]; !taken {
		return candidate
	}

	hashed := ""
	for n := 1; ; n++ {
		base := stem
		if n >= 5 {
			if hashed == "" {
				h := fnv.New32a()
				h.Write([]byte(name))
				hashed = fmt.Sprintf("%04X", h.Sum32()&0xFFFF)
			}
			base = hashed
		}

		suffix := fmt.Sprintf("~%d", n)
		if len(base)+len(suffix) > 8 {
			base = base[:8-len(suffix)]
		}

		candidate = NewShortName(base+suffix, extension)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
