package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMediaIDIsDeterministic(t *testing.T) {
	item := MediaItem{Title: "a clip", Category: "Cat", Src: "/video/Cat/a.mp4", Type: TypeVideo}

	first := GenerateMediaID(item)
	second := GenerateMediaID(item)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "video:")

	item.Title = "renamed"
	assert.NotEqual(t, first, GenerateMediaID(item))
}

func TestCloneDetachesTags(t *testing.T) {
	item := MediaItem{ID: "v1", Tags: []string{"cute"}}
	copied := item.Clone()
	copied.Tags[0] = "changed"

	assert.Equal(t, "cute", item.Tags[0])
}

func TestHasTag(t *testing.T) {
	item := MediaItem{Tags: []string{"cute", "dance"}}
	assert.True(t, item.HasTag("dance"))
	assert.False(t, item.HasTag("Dance"))
	assert.False(t, MediaItem{}.HasTag("cute"))
}
