package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeThumbPath(t *testing.T) {
	cases := []struct {
		rel      string
		expected string
		ok       bool
	}{
		{"video/Cat/clip.mp4", filepath.Join("public", "thumbs", "Cat", "clip.jpg"), true},
		{"image/Cat/pic.mov", filepath.Join("public", "thumbs", "image", "Cat", "pic.jpg"), true},
		{"elsewhere/clip.mp4", "", false},
	}

	for _, tc := range cases {
		got, ok := makeThumbPath("public", tc.rel)
		require.Equal(t, tc.ok, ok, tc.rel)
		assert.Equal(t, tc.expected, got)
	}
}
