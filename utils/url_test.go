package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeMediaPath(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"/video/Sáng tạo/clip 01.mp4", "/video/S%C3%A1ng%20t%E1%BA%A1o/clip%2001.mp4"},
		{"/image/plain/a.png", "/image/plain/a.png"},
		{"https://example.com/a b.png", "https://example.com/a b.png"},
		{"data:image/jpeg;base64,abcd", "data:image/jpeg;base64,abcd"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, EncodeMediaPath(tc.input))
	}
}
