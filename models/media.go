package models

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type MediaType string

const (
	TypePhoto MediaType = "photo"
	TypeVideo MediaType = "video"
)

// Wildcard is the synthetic filter value meaning "no constraint". It is
// only ever a selection, never stored on an item.
const Wildcard = "All"

// DefaultDate is substituted for missing or unparseable dates during
// sorting so undated items sort as oldest.
const DefaultDate = "2000-01-01"

type SortOption string

const (
	SortAlphabetAsc  SortOption = "alphabet-asc"
	SortAlphabetDesc SortOption = "alphabet-desc"
	SortDateDesc     SortOption = "date-desc"
	SortDateAsc      SortOption = "date-asc"
	SortViewsDesc    SortOption = "views-desc"
	SortViewsAsc     SortOption = "views-asc"
)

type Surface string

const (
	SurfacePhotos Surface = "photos"
	SurfaceVideos Surface = "videos"
	SurfaceAdmin  Surface = "admin"
)

// MediaItem is one photo or video in the catalog. ID and Type are fixed
// at creation and never reassigned.
type MediaItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Src       string    `json:"src"`
	Date      string    `json:"date,omitempty"`
	Type      MediaType `json:"type"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Views     int       `json:"views,omitempty"`
}

// HasTag reports whether the item carries the given tag by exact match.
func (m MediaItem) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand items out without
// sharing the tags slice with the stored record.
func (m MediaItem) Clone() MediaItem {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}

// Snapshot is a serializable copy of the full two-sequence catalog, used
// for persistence, export and import. Either sequence may be nil in a
// partial import document.
type Snapshot struct {
	Photos []MediaItem `json:"photos"`
	Videos []MediaItem `json:"videos"`
}

// GenerateMediaID derives a stable identifier for items that arrive
// without one, such as hand-edited import documents. It's deterministic
// so running it repeatedly over the same item is harmless.
func GenerateMediaID(m MediaItem) string {
	hashString := fmt.Sprintf("%s-%s-%s-%s", m.Title, m.Category, m.Src, m.Type)
	return fmt.Sprintf("%s:%d", strings.ToLower(string(m.Type)), xxhash.Sum64String(hashString))
}
