package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentsSizeLimit(t *testing.T) {
	a := NewAttachments(t.TempDir(), 4)
	_, err := a.Save(Upload{Name: "big.bin", Reader: strings.NewReader("12345")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	name, err := a.Save(Upload{Name: "ok.bin", Reader: strings.NewReader("1234")})
	require.NoError(t, err)
	assert.Equal(t, "ok.bin", DisplayName(name))
}

func TestAttachmentsOpenRejectsPaths(t *testing.T) {
	a := NewAttachments(t.TempDir(), 0)
	for _, bad := range []string{"", "../etc/passwd", "sub/file", ".hidden"} {
		_, err := a.Open(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
	_, err := a.Open("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisplayNameKeepsUnprefixedNames(t *testing.T) {
	assert.Equal(t, "report.pdf", DisplayName("report.pdf"))
}
