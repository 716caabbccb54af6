package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffMimeHTTP(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/png", SniffMimeHTTP([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP([]byte("hello")))
}

func TestPickMIME(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	assert.Equal(t, "image/webp", PickMIME("image/webp", "image/png", png))
	assert.Equal(t, "image/gif", PickMIME("", "image/gif", png))
	assert.Equal(t, "image/png", PickMIME("", "", png))
	assert.Equal(t, "image/jpeg", PickMIME("", "", nil))
}

func TestMimeFromFormat(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeFromFormat("jpeg"))
	assert.Equal(t, "image/webp", MimeFromFormat("WEBP"))
	assert.Empty(t, MimeFromFormat("heic"))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello world \n", "hello world"},
		{"fenced with tag", "```text\nline one\nline two\n```", "line one\nline two"},
		{"fenced bare", "```\nabc\n```", "abc"},
		{"fence only", "```\n```", ""},
		{"fenced then more text", "```python\nprint(1)\n```\nmore", "```python\nprint(1)\n```\nmore"},
		{"text then fence", "intro\n```\ncode\n```", "intro\n```\ncode\n```"},
		{"two blocks", "```\na\n```\nb\n```\nc\n```", "```\na\n```\nb\n```\nc\n```"},
		{"inline fence", "```abc```", "```abc```"},
		{"first line kept without fence", "NOTE:\nbody", "NOTE:\nbody"},
		{"crlf", "a\r\nb", "a\nb"},
		{"nfc", "e\u0301", "\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}
