package fat32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortName_String(t *testing.T) {
	tests := []struct {
		name      string
		extension string
		want      string
	}{
		{"HELLO", "TXT", "HELLO.TXT"},
		{"NOEXT", "", "NOEXT"},
		{"12345678", "ABC", "12345678.ABC"},
		{".", "", "."},
		{"..", "", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NewShortName(tt.name, tt.extension).String())
		})
	}
}

func TestShortName_SerializeParseRoundTrip(t *testing.T) {
	original := NewShortName("HELLO", "TXT")

	data := make([]byte, 11)
	original.Serialize(data)
	parsed := ParseShortName(data)

	assert.Equal(t, original, parsed)
	assert.Equal(t, original.CheckSum(), parsed.CheckSum())
}

func TestShortName_CheckSum(t *testing.T) {
	// Names that differ in one byte get different checksums.
	a := NewShortName("A", "").CheckSum()
	b := NewShortName("B", "").CheckSum()
	assert.NotEqual(t, a, b)

	// Stable across calls.
	assert.Equal(t, a, NewShortName("A", "").CheckSum())
}

func TestGenerateShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"hello.txt", "HELLO.TXT"},
		{"HELLO.TXT", "HELLO.TXT"},
		{"résumé.txt", "RESUME.TXT"},
		{"some name.extension", "SOME_NAM.EXT"},
		{"a.b.c.d.tar", "A_B_C_D.TAR"},
		{"noextension", "NOEXTENS"},
		{"trailing dots...", "TRAILING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateShortName(tt.name, nil)
			assert.Equal(t, tt.want, got.String())

			// Generation is stable while the existing set stays empty.
			assert.Equal(t, got, GenerateShortName(tt.name, nil))
		})
	}
}

func TestGenerateShortName_Collisions(t *testing.T) {
	existing := map[ShortName]*DirectoryEntry{}
	take := func(name string) string {
		shortName := GenerateShortName(name, existing)
		existing[shortName] = &DirectoryEntry{}
		return shortName.String()
	}

	assert.Equal(t, "COLLIDIN.TXT", take("collidingname0.txt"))
	assert.Equal(t, "COLLID~1.TXT", take("collidingname1.txt"))
	assert.Equal(t, "COLLID~2.TXT", take("collidingname2.txt"))
	assert.Equal(t, "COLLID~3.TXT", take("collidingname3.txt"))
	assert.Equal(t, "COLLID~4.TXT", take("collidingname4.txt"))

	// From the fifth collision on the stem is hashed.
	hashed := take("collidingname5.txt")
	assert.Regexp(t, `^[0-9A-F]{3,4}~\d+\.TXT$`, hashed)

	// Everything handed out so far stays unique.
	assert.Len(t, existing, 6)
}
