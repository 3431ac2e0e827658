// Package session is the top-level coordinator: it owns the transient
// view selection state (surface, filters, sort, page) and is the single
// owner of what is currently open. The suggested panel and the player's
// shuffle-on-end both post typed open-item requests here instead of
// opening anything themselves.
package session

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/r3labs/sse/v2"

	"github.com/tdvu/galleria/catalog"
	"github.com/tdvu/galleria/events"
	"github.com/tdvu/galleria/models"
	"github.com/tdvu/galleria/query"
	"github.com/tdvu/galleria/viewer"
)

// State is the serializable view of the current selection.
type State struct {
	Surface   models.Surface    `json:"surface"`
	Category  string            `json:"category"`
	Tag       string            `json:"tag"`
	Sort      models.SortOption `json:"sort"`
	Page      int               `json:"page"`
	OpenPhoto *models.MediaItem `json:"openPhoto,omitempty"`
	OpenVideo *models.MediaItem `json:"openVideo,omitempty"`
}

type Session struct {
	mu      sync.Mutex
	catalog *catalog.Catalog

	surface  models.Surface
	category string
	tag      string
	sort     models.SortOption
	page     int

	lightbox viewer.Lightbox
	player   *viewer.Player

	// Revision of the catalog the current page index was chosen
	// against. When it moves, the page resets to 1.
	seenRevision int64
}

func New(cat *catalog.Catalog, rng *rand.Rand) *Session {
	return &Session{
		catalog:      cat,
		surface:      models.SurfaceVideos,
		category:     models.Wildcard,
		tag:          models.Wildcard,
		sort:         models.SortAlphabetAsc,
		page:         1,
		player:       viewer.NewPlayer(rng),
		seenRevision: cat.Revision(),
	}
}

// SetSurface switches the top-level mode. Category and tag reset
// together; the sort selection survives.
func (s *Session) SetSurface(surface models.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface = surface
	s.category = models.Wildcard
	s.tag = models.Wildcard
	s.page = 1
}

// SetCategory resets the tag alone.
func (s *Session) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
	s.tag = models.Wildcard
	s.page = 1
}

func (s *Session) SetTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tag
	s.page = 1
}

func (s *Session) SetSort(sort models.SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = sort
	s.page = 1
}

func (s *Session) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page >= 1 {
		s.page = page
	}
}

// Params snapshots the current selection for the query pipeline.
func (s *Session) Params() query.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paramsLocked()
}

func (s *Session) paramsLocked() query.Params {
	return query.Params{
		Surface:  s.surface,
		Category: s.category,
		Tag:      s.tag,
		Sort:     s.sort,
		Page:     s.page,
	}
}

// Results runs the query pipeline against the current pool. If the
// catalog changed since the page index was last chosen, the page goes
// back to 1 first.
func (s *Session) Results() query.Page {
	s.mu.Lock()
	if rev := s.catalog.Revision(); rev != s.seenRevision {
		s.seenRevision = rev
		s.page = 1
	}
	params := s.paramsLocked()
	s.mu.Unlock()

	return query.Run(s.catalog.Pool(params.Surface), params)
}

// Facets lists the selectable categories and tags for the current
// surface. Tag options narrow with the category selection but are not
// narrowed by the tag selection itself.
func (s *Session) Facets() (categories, tags []string) {
	params := s.Params()
	pool := s.catalog.Pool(params.Surface)
	return query.Categories(pool), query.Tags(query.FilterCategory(pool, params.Category))
}

// State reports the full selection, including whatever is open.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := State{
		Surface:  s.surface,
		Category: s.category,
		Tag:      s.tag,
		Sort:     s.sort,
		Page:     s.page,
	}
	if item, ok := s.lightbox.Current(); ok {
		state.OpenPhoto = &item
	}
	if item, ok := s.player.Current(); ok {
		state.OpenVideo = &item
	}
	return state
}

// OpenPhoto opens the lightbox on a clicked item. The click increments
// the view count first, so the viewer shows the post-increment value.
func (s *Session) OpenPhoto(id string) (models.MediaItem, bool) {
	item, ok := s.catalog.IncrementViews(id, models.TypePhoto)
	if !ok {
		return models.MediaItem{}, false
	}
	s.mu.Lock()
	s.lightbox.Open(item)
	s.mu.Unlock()
	return item, true
}

// OpenVideo opens the player on a clicked item, incrementing views and
// resampling suggestions from the full video set.
func (s *Session) OpenVideo(id string) (models.MediaItem, bool) {
	item, ok := s.catalog.IncrementViews(id, models.TypeVideo)
	if !ok {
		return models.MediaItem{}, false
	}
	s.mu.Lock()
	s.player.Open(item, s.catalog.Videos())
	s.mu.Unlock()
	return item, true
}

func (s *Session) ClosePhoto() {
	s.mu.Lock()
	s.lightbox.Close()
	s.mu.Unlock()
}

func (s *Session) CloseVideo() {
	s.mu.Lock()
	s.player.Close()
	s.mu.Unlock()
}

// WithLightbox runs fn against the photo viewer under the session lock.
// All command handling and state reads go through here so the state
// machines themselves stay lock-free.
func (s *Session) WithLightbox(fn func(*viewer.Lightbox)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.lightbox)
}

// WithPlayer runs fn against the video player under the session lock.
func (s *Session) WithPlayer(fn func(*viewer.Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.player)
}

// PhotoNav cycles the lightbox through the currently filtered and
// sorted sequence. An open item that fell out of the sequence is a
// defensive no-op.
func (s *Session) PhotoNav(forward bool) (models.MediaItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	params := s.paramsLocked()
	sequence := query.Filtered(s.catalog.Pool(params.Surface), params)
	var moved bool
	if forward {
		moved = s.lightbox.Next(sequence)
	} else {
		moved = s.lightbox.Prev(sequence)
	}
	if !moved {
		return models.MediaItem{}, false
	}
	item, _ := s.lightbox.Current()
	return item, true
}

// HandlePlayerEvent mirrors a media element event into the player. A
// shuffle-on-end signal comes back as an open-item request, which the
// session owns.
func (s *Session) HandlePlayerEvent(event viewer.Event) {
	s.mu.Lock()
	next := s.player.ApplyEvent(event)
	s.mu.Unlock()
	if next != nil {
		s.RequestOpenVideo(*next)
	}
}

// RequestOpenVideo is the typed open-item message used from outside the
// normal click path (suggested panel, shuffle-on-end). Unlike a click
// it does not increment the view counter; it reopens the player on the
// carried item and broadcasts the change so clients follow along.
func (s *Session) RequestOpenVideo(item models.MediaItem) {
	s.mu.Lock()
	s.player.Open(item, s.catalog.Videos())
	s.mu.Unlock()

	if events.Server != nil {
		payload, err := json.Marshal(item)
		if err != nil {
			slog.With(slog.Any("error", err)).Error("Failed to encode open-video signal")
			return
		}
		events.Server.Publish(events.StreamOpenVideo, &sse.Event{Data: payload})
	}
}
