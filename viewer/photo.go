// Package viewer holds the two interactive viewer state machines: the
// photo lightbox and the video player. Both are plain state holders
// driven by user commands and, for the player, by media element events.
package viewer

import (
	"math"

	"github.com/tdvu/galleria/models"
)

// Zoom bounds and steps for the lightbox.
const (
	MinZoom       = 0.5
	MaxZoom       = 3.0
	ZoomStep      = 0.25
	WheelZoomStep = 0.1
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lightbox is the photo viewer: closed, or open with zoom, pan and an
// optional drag gesture in progress.
type Lightbox struct {
	open      bool
	item      models.MediaItem
	zoom      float64
	pan       Point
	dragging  bool
	dragStart Point
}

// Open shows an item, always starting from zoom 1.0 and origin pan no
// matter what the previous state was.
func (l *Lightbox) Open(item models.MediaItem) {
	l.open = true
	l.item = item
	l.zoom = 1.0
	l.pan = Point{}
	l.dragging = false
}

func (l *Lightbox) Close() {
	l.open = false
	l.dragging = false
}

func (l *Lightbox) IsOpen() bool { return l.open }

func (l *Lightbox) Current() (models.MediaItem, bool) {
	return l.item, l.open
}

func (l *Lightbox) Zoom() float64 { return l.zoom }
func (l *Lightbox) Pan() Point    { return l.pan }

// Next cycles forward through the given filtered sequence, wrapping at
// the end. If the open item is no longer in the sequence (filters moved
// underneath it) nothing happens.
func (l *Lightbox) Next(sequence []models.MediaItem) bool {
	return l.navigate(sequence, 1)
}

// Prev cycles backward, wrapping at the start.
func (l *Lightbox) Prev(sequence []models.MediaItem) bool {
	return l.navigate(sequence, -1)
}

func (l *Lightbox) navigate(sequence []models.MediaItem, delta int) bool {
	if !l.open || len(sequence) == 0 {
		return false
	}
	current := -1
	for i, item := range sequence {
		if item.ID == l.item.ID {
			current = i
			break
		}
	}
	if current < 0 {
		return false
	}
	next := (current + delta + len(sequence)) % len(sequence)
	l.Open(sequence[next])
	return true
}

// SetZoom clamps into range. When zoom lands back on 1.0 the pan snaps
// to origin.
func (l *Lightbox) SetZoom(zoom float64) {
	if !l.open {
		return
	}
	zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
	if math.Abs(zoom-1.0) < 1e-9 {
		zoom = 1.0
		l.pan = Point{}
	}
	l.zoom = zoom
}

func (l *Lightbox) ZoomIn()  { l.SetZoom(l.zoom + ZoomStep) }
func (l *Lightbox) ZoomOut() { l.SetZoom(l.zoom - ZoomStep) }

// Wheel applies a pointer-wheel zoom tick; a positive delta zooms out.
func (l *Lightbox) Wheel(deltaY float64) {
	if deltaY > 0 {
		l.SetZoom(l.zoom - WheelZoomStep)
	} else {
		l.SetZoom(l.zoom + WheelZoomStep)
	}
}

// ResetZoom returns to 1.0 and origin.
func (l *Lightbox) ResetZoom() {
	l.SetZoom(1.0)
}

// StartDrag begins a pan gesture. Panning is only permitted while
// zoomed in.
func (l *Lightbox) StartDrag(at Point) {
	if !l.open || l.zoom <= 1.0 {
		return
	}
	l.dragging = true
	l.dragStart = Point{X: at.X - l.pan.X, Y: at.Y - l.pan.Y}
}

// Drag moves the pan as the delta from the drag-start anchor. Ignored
// unless a gesture is active and the image is zoomed in.
func (l *Lightbox) Drag(at Point) {
	if !l.dragging || l.zoom <= 1.0 {
		return
	}
	l.pan = Point{X: at.X - l.dragStart.X, Y: at.Y - l.dragStart.Y}
}

func (l *Lightbox) EndDrag() {
	l.dragging = false
}

func (l *Lightbox) Dragging() bool { return l.dragging }
