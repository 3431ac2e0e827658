package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/r3labs/sse/v2"

	"github.com/tdvu/galleria/events"
	"github.com/tdvu/galleria/models"
)

// Storage keys for the persisted snapshot, one per sequence.
const (
	KeyPhotos = "media.photos"
	KeyVideos = "media.videos"
)

var ErrIdentityChanged = errors.New("catalog: item id and type are immutable")

// SnapshotStore is the key-value local store the catalog persists itself
// into after every mutation, and reads back from on startup.
type SnapshotStore interface {
	GetValue(key string) ([]byte, error)
	UpsertValue(key string, value []byte) error
}

// Catalog owns the in-memory photo and video sequences. Mutation happens
// only through its methods and always swaps in fresh slices, so a caller
// holding a previously returned slice never observes an in-place change.
type Catalog struct {
	mu       sync.RWMutex
	photos   []models.MediaItem
	videos   []models.MediaItem
	revision int64
	store    SnapshotStore
}

func New(store SnapshotStore) *Catalog {
	return &Catalog{store: store}
}

// Load seeds the catalog from the bundled default snapshot, normalizes
// video thumbnails, then layers any previously persisted sequences on
// top. Malformed persisted values are ignored; Load never fails.
func (c *Catalog) Load(defaults models.Snapshot) {
	c.mu.Lock()
	c.photos = clone(defaults.Photos)
	c.videos = normalizeThumbnails(defaults.Videos)
	c.revision++
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	c.ApplyOverride(models.Snapshot{
		Photos: decodeStored(c.store, KeyPhotos),
		Videos: decodeStored(c.store, KeyVideos),
	})
}

// decodeStored reads one persisted sequence, tolerating absence and
// malformed payloads by returning nil.
func decodeStored(store SnapshotStore, key string) []models.MediaItem {
	raw, err := store.GetValue(key)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var items []models.MediaItem
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.With(slog.String("key", key), slog.Any("error", err)).
			Warn("Ignoring malformed persisted snapshot")
		return nil
	}
	return items
}

// ApplyOverride replaces either sequence wholesale when a prior snapshot
// provides it. A nil sequence leaves the current one alone.
func (c *Catalog) ApplyOverride(snapshot models.Snapshot) {
	c.mu.Lock()
	if snapshot.Photos != nil {
		c.photos = clone(snapshot.Photos)
	}
	if snapshot.Videos != nil {
		c.videos = normalizeThumbnails(snapshot.Videos)
	}
	c.revision++
	c.mu.Unlock()
}

// Photos returns a fresh copy of the photo sequence.
func (c *Catalog) Photos() []models.MediaItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.photos)
}

// Videos returns a fresh copy of the video sequence.
func (c *Catalog) Videos() []models.MediaItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.videos)
}

// Pool returns the unfiltered item set for a browsing surface. The admin
// surface has its own independent search so it yields an empty pool here.
func (c *Catalog) Pool(surface models.Surface) []models.MediaItem {
	switch surface {
	case models.SurfacePhotos:
		return c.Photos()
	case models.SurfaceVideos:
		return c.Videos()
	default:
		return []models.MediaItem{}
	}
}

// Lookup finds an item by id within the sequence matching the given type.
func (c *Catalog) Lookup(id string, mediaType models.MediaType) (models.MediaItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.sequenceFor(mediaType) {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return models.MediaItem{}, false
}

// IncrementViews bumps the view counter of one item by exactly one and
// returns the updated copy. Unknown ids are a no-op.
func (c *Catalog) IncrementViews(id string, mediaType models.MediaType) (models.MediaItem, bool) {
	c.mu.Lock()
	seq := c.sequenceFor(mediaType)
	next := make([]models.MediaItem, len(seq))
	var updated models.MediaItem
	var found bool
	for i, item := range seq {
		if item.ID == id {
			item.Views++
			updated = item.Clone()
			found = true
		}
		next[i] = item
	}
	if found {
		c.setSequence(mediaType, next)
		c.revision++
	}
	c.mu.Unlock()
	if found {
		c.persist()
	}
	return updated, found
}

// UpdateField replaces the stored item sharing the given item's id within
// the sequence matching its type. Attempts to move an item across
// sequences, or to update an id that does not exist there, are rejected.
func (c *Catalog) UpdateField(item models.MediaItem) error {
	c.mu.Lock()
	seq := c.sequenceFor(item.Type)
	next := make([]models.MediaItem, len(seq))
	var found bool
	for i, existing := range seq {
		if existing.ID == item.ID {
			next[i] = item.Clone()
			found = true
		} else {
			next[i] = existing
		}
	}
	if found {
		c.setSequence(item.Type, next)
		c.revision++
	}
	c.mu.Unlock()
	if !found {
		return ErrIdentityChanged
	}
	c.persist()
	return nil
}

// ExportSnapshot produces a deep serializable copy of both sequences.
func (c *Catalog) ExportSnapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.Snapshot{
		Photos: clone(c.photos),
		Videos: clone(c.videos),
	}
}

// ImportSnapshot replaces sequences wholesale from an import document,
// tolerating partial documents. Imported videos are thumbnail-normalized
// and any items missing ids get deterministic ones.
func (c *Catalog) ImportSnapshot(snapshot models.Snapshot) {
	c.mu.Lock()
	if snapshot.Photos != nil {
		c.photos = assignIDs(clone(snapshot.Photos), models.TypePhoto)
	}
	if snapshot.Videos != nil {
		c.videos = assignIDs(normalizeThumbnails(snapshot.Videos), models.TypeVideo)
	}
	c.revision++
	c.mu.Unlock()
	c.persist()
}

// persist writes the full snapshot under both storage keys and pings
// clients to rehydrate. Best effort: failures are logged, never raised.
func (c *Catalog) persist() {
	snapshot := c.ExportSnapshot()
	if c.store != nil {
		for key, seq := range map[string][]models.MediaItem{
			KeyPhotos: snapshot.Photos,
			KeyVideos: snapshot.Videos,
		} {
			raw, err := json.Marshal(seq)
			if err == nil {
				err = c.store.UpsertValue(key, raw)
			}
			if err != nil {
				slog.With(slog.String("key", key), slog.Any("error", err)).
					Error("Failed to persist catalog snapshot")
			}
		}
	}
	// Just enough for clients to know to refetch, no payload diffing
	if events.Server != nil {
		events.Server.Publish(events.StreamCatalog, &sse.Event{Data: []byte(`{"changed":true}`)})
	}
}

// Revision increments on every mutation. Dependent derivations compare
// it to detect that the underlying data set changed, the same way the
// original relied on collection identity.
func (c *Catalog) Revision() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

func (c *Catalog) sequenceFor(mediaType models.MediaType) []models.MediaItem {
	if mediaType == models.TypePhoto {
		return c.photos
	}
	return c.videos
}

func (c *Catalog) setSequence(mediaType models.MediaType, items []models.MediaItem) {
	if mediaType == models.TypePhoto {
		c.photos = items
	} else {
		c.videos = items
	}
}

func clone(items []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func assignIDs(items []models.MediaItem, mediaType models.MediaType) []models.MediaItem {
	for i := range items {
		if items[i].Type == "" {
			items[i].Type = mediaType
		}
		if items[i].ID == "" {
			items[i].ID = models.GenerateMediaID(items[i])
		}
	}
	return items
}
