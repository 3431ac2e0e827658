package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdvu/galleria/models"
)

func TestDefaultSnapshotDecodes(t *testing.T) {
	snapshot := DefaultSnapshot()

	require.NotEmpty(t, snapshot.Photos)
	require.NotEmpty(t, snapshot.Videos)

	for _, item := range snapshot.Photos {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Src)
		assert.Equal(t, models.TypePhoto, item.Type)
	}
	for _, item := range snapshot.Videos {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Src)
		assert.Equal(t, models.TypeVideo, item.Type)
	}
}
