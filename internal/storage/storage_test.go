package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"passport.png", KindImage},
		{"id_front.jpg", KindImage},
		{"scan.JPEG", KindImage},
		{"contract.pdf", KindDocument},
		{"contract.PDF", KindDocument},
		{"malware.exe", KindUnknown},
		{"archive.tar.gz", KindUnknown},
		{"noextension", KindUnknown},
		{"", KindUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.name), "classify %q", tc.name)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"passport.png", "passport.png"},
		{"my scan.jpg", "my_scan.jpg"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\boot.ini", "boot.ini"},
		{"a/b/c.pdf", "c.pdf"},
		{"UPPER.PDF", "UPPER.pdf"},
		{"جواز سفر.png", "file.png"},
		{"....", "file"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Sanitize(tc.in), "sanitize %q", tc.in)
	}
}

func TestNewName(t *testing.T) {
	a := NewName("passport.png")
	b := NewName("passport.png")

	assert.NotEqual(t, a, b, "two names for the same upload must differ")
	assert.True(t, strings.HasSuffix(a, "_passport.png"))
	assert.Equal(t, KindImage, Classify(a), "stored name keeps the image extension")

	token, _, ok := strings.Cut(a, "_")
	assert.True(t, ok)
	assert.Len(t, token, 16)
	assert.NotContains(t, a, "/")
}
