package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdvu/galleria/models"
)

func photoSequence() []models.MediaItem {
	return []models.MediaItem{
		{ID: "a", Type: models.TypePhoto},
		{ID: "b", Type: models.TypePhoto},
		{ID: "c", Type: models.TypePhoto},
	}
}

func TestLightbox_OpenResetsZoomAndPan(t *testing.T) {
	var l Lightbox
	l.Open(photoSequence()[0])
	l.SetZoom(2)
	l.StartDrag(Point{X: 10, Y: 10})
	l.Drag(Point{X: 30, Y: 40})

	l.Open(photoSequence()[1])
	assert.Equal(t, 1.0, l.Zoom())
	assert.Equal(t, Point{}, l.Pan())
	assert.False(t, l.Dragging())
}

func TestLightbox_NavigationWraps(t *testing.T) {
	seq := photoSequence()
	var l Lightbox
	l.Open(seq[0])

	require.True(t, l.Next(seq))
	item, _ := l.Current()
	assert.Equal(t, "b", item.ID)

	require.True(t, l.Next(seq))
	require.True(t, l.Next(seq))
	item, _ = l.Current()
	assert.Equal(t, "a", item.ID)

	require.True(t, l.Prev(seq))
	item, _ = l.Current()
	assert.Equal(t, "c", item.ID)
}

func TestLightbox_NavigationWithMissingItemIsNoOp(t *testing.T) {
	seq := photoSequence()
	var l Lightbox
	l.Open(models.MediaItem{ID: "gone", Type: models.TypePhoto})

	assert.False(t, l.Next(seq))
	assert.False(t, l.Prev(seq))
	item, _ := l.Current()
	assert.Equal(t, "gone", item.ID)
}

func TestLightbox_NavigationWhenClosedIsNoOp(t *testing.T) {
	var l Lightbox
	assert.False(t, l.Next(photoSequence()))
	assert.False(t, l.Prev(nil))
}

func TestLightbox_ZoomClamps(t *testing.T) {
	var l Lightbox
	l.Open(photoSequence()[0])

	l.SetZoom(99)
	assert.Equal(t, MaxZoom, l.Zoom())
	l.SetZoom(0.01)
	assert.Equal(t, MinZoom, l.Zoom())

	l.ResetZoom()
	assert.Equal(t, 1.0, l.Zoom())
}

func TestLightbox_ZoomStepsAndWheel(t *testing.T) {
	var l Lightbox
	l.Open(photoSequence()[0])

	l.ZoomIn()
	assert.InDelta(t, 1.25, l.Zoom(), 1e-9)
	l.ZoomOut()
	assert.InDelta(t, 1.0, l.Zoom(), 1e-9)

	// Wheel down zooms out, wheel up zooms in.
	l.Wheel(120)
	assert.InDelta(t, 0.9, l.Zoom(), 1e-9)
	l.Wheel(-120)
	assert.InDelta(t, 1.0, l.Zoom(), 1e-9)
}

func TestLightbox_ReturningToBaseZoomSnapsPanHome(t *testing.T) {
	var l Lightbox
	l.Open(photoSequence()[0])
	l.SetZoom(2)
	l.StartDrag(Point{X: 0, Y: 0})
	l.Drag(Point{X: 50, Y: 60})
	l.EndDrag()
	assert.Equal(t, Point{X: 50, Y: 60}, l.Pan())

	l.SetZoom(1.0)
	assert.Equal(t, Point{}, l.Pan())
}

func TestLightbox_PanOnlyWhileZoomedAndDragging(t *testing.T) {
	var l Lightbox
	l.Open(photoSequence()[0])

	// No drag at base zoom.
	l.StartDrag(Point{X: 5, Y: 5})
	assert.False(t, l.Dragging())
	l.Drag(Point{X: 50, Y: 50})
	assert.Equal(t, Point{}, l.Pan())

	// Zoomed in, but no gesture started.
	l.SetZoom(2)
	l.Drag(Point{X: 50, Y: 50})
	assert.Equal(t, Point{}, l.Pan())

	// Pan follows the delta from the gesture anchor.
	l.StartDrag(Point{X: 10, Y: 10})
	l.Drag(Point{X: 25, Y: 35})
	assert.Equal(t, Point{X: 15, Y: 25}, l.Pan())

	l.EndDrag()
	l.Drag(Point{X: 100, Y: 100})
	assert.Equal(t, Point{X: 15, Y: 25}, l.Pan())
}
