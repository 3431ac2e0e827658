// Package thumbs derives still-frame thumbnails for video tiles on
// demand. A tile only becomes eligible once the client reports it
// visible, generates at most once per mount, and falls back to a
// placeholder on error or timeout. Results live in a bounded cache for
// the lifetime of the tile's mount; nothing is written back into the
// catalog from here.
package thumbs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/r3labs/sse/v2"

	"github.com/tdvu/galleria/events"
	"github.com/tdvu/galleria/models"
	"github.com/tdvu/galleria/utils"
)

type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Generation tuning, matching the interactive defaults.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultSeek     = 500 * time.Millisecond
	DefaultMaxWidth = 480
	jpegQuality     = 40
	cacheSize       = 256
)

var ErrNotReady = errors.New("thumbs: no derived image for tile")

// Extractor is the platform capability of deriving a still image from a
// video asset at a timestamp, scaled to a bounded width. The deriver
// only depends on its success, failure and timeout contract.
type Extractor interface {
	ExtractFrame(ctx context.Context, src string, at time.Duration, maxWidth int) (image.Image, error)
}

// Result is one derived thumbnail.
type Result struct {
	Data            []byte   `json:"-"`
	Location        string   `json:"location"`
	DominantColours []string `json:"dominant_colours,omitempty"`
}

type tile struct {
	state State
	err   string
}

// Deriver tracks per-tile derivation state. One Deriver serves all
// mounted tiles; tiles are keyed by media id.
type Deriver struct {
	mu        sync.Mutex
	tiles     map[string]*tile
	cache     *lru.Cache[string, *Result]
	extractor Extractor
	timeout   time.Duration
	maxWidth  int
}

func NewDeriver(extractor Extractor) *Deriver {
	cache, _ := lru.New[string, *Result](cacheSize)
	return &Deriver{
		tiles:     map[string]*tile{},
		cache:     cache,
		extractor: extractor,
		timeout:   DefaultTimeout,
		maxWidth:  DefaultMaxWidth,
	}
}

// StateOf reports the tile's current lifecycle state. Tiles that were
// never marked visible are idle.
func (d *Deriver) StateOf(id string) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tiles[id]; ok {
		return t.state
	}
	return StateIdle
}

// ResultOf returns the derived image for a ready tile.
func (d *Deriver) ResultOf(id string) (*Result, error) {
	if res, ok := d.cache.Get(id); ok {
		return res, nil
	}
	return nil, ErrNotReady
}

// MarkVisible is the visibility trigger: the first call for a mounted
// tile starts generation, every later call is a no-op regardless of how
// the previous attempt ended. Items with a pre-supplied image thumbnail
// short-circuit straight to ready without generating anything.
func (d *Deriver) MarkVisible(item models.MediaItem) State {
	if item.Type != models.TypeVideo {
		return StateIdle
	}

	d.mu.Lock()
	if t, ok := d.tiles[item.ID]; ok {
		state := t.state
		d.mu.Unlock()
		return state
	}

	if item.Thumbnail != "" {
		d.tiles[item.ID] = &tile{state: StateReady}
		d.cache.Add(item.ID, &Result{Location: item.Thumbnail})
		d.mu.Unlock()
		return StateReady
	}

	d.tiles[item.ID] = &tile{state: StateGenerating}
	d.mu.Unlock()

	go d.generate(item)
	return StateGenerating
}

// Unmount forgets a tile so a future mount can derive again, and drops
// its cached image. Safe to call for tiles that never generated.
func (d *Deriver) Unmount(id string) {
	d.mu.Lock()
	delete(d.tiles, id)
	d.mu.Unlock()
	d.cache.Remove(id)
}

// DeriveNow generates synchronously, bypassing tile bookkeeping. This
// backs the explicit admin "generate thumbnail" action, which is the
// only path that writes a derived image back into the catalog.
func (d *Deriver) DeriveNow(ctx context.Context, src string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	frame, err := d.extractor.ExtractFrame(ctx, src, DefaultSeek, d.maxWidth)
	if err != nil {
		return nil, err
	}
	return encodeFrame(frame)
}

func (d *Deriver) generate(item models.MediaItem) {
	started := time.Now()
	res, err := d.DeriveNow(context.Background(), item.Src)

	d.mu.Lock()
	t, ok := d.tiles[item.ID]
	if !ok || t.state != StateGenerating {
		// Tile unmounted mid-flight, or a duplicate completion raced
		// in. A finished derivation is never restarted or overwritten.
		d.mu.Unlock()
		return
	}
	if err != nil {
		t.state = StateFailed
		t.err = err.Error()
	} else {
		t.state = StateReady
		d.cache.Add(item.ID, res)
	}
	state := t.state
	d.mu.Unlock()

	log := slog.With(
		slog.String("id", item.ID),
		slog.Duration("took", time.Since(started)),
	)
	if err != nil {
		log.With(slog.Any("error", err)).Warn("Thumbnail derivation failed")
	} else {
		log.Debug("Thumbnail derived")
	}
	d.announce(item.ID, state)
}

func (d *Deriver) announce(id string, state State) {
	if events.Server == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"id": id, "state": string(state)})
	events.Server.Publish(events.StreamThumbnails, &sse.Event{Data: payload})
}

func encodeFrame(frame image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	location, _ := utils.BytesToGUIDLocation(data, "jpg")
	return &Result{
		Data:            data,
		Location:        location,
		DominantColours: utils.ExtractColours(frame),
	}, nil
}
