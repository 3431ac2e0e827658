// Package query derives the visible item list from a media pool and the
// current browsing selection: category filter, tag filter, stable sort,
// then a 1-based page slice. Everything here is pure; the catalog is
// never mutated.
package query

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tdvu/galleria/models"
)

// Fixed page sizes per browsing surface.
const (
	PhotosPerPage = 50
	VideosPerPage = 24
)

type Params struct {
	Surface  models.Surface    `json:"surface"`
	Category string            `json:"category"`
	Tag      string            `json:"tag"`
	Sort     models.SortOption `json:"sort"`
	Page     int               `json:"page"`
}

// Page is one slice of the filtered and sorted sequence. An empty result
// still reports PageCount 1 so clients render an empty state, never a
// zero-page one.
type Page struct {
	Items      []models.MediaItem `json:"items"`
	Page       int                `json:"page"`
	PageCount  int                `json:"pageCount"`
	PageSize   int                `json:"pageSize"`
	TotalItems int                `json:"totalItems"`
}

// PageSize returns the fixed page size for a surface.
func PageSize(surface models.Surface) int {
	if surface == models.SurfaceVideos {
		return VideosPerPage
	}
	return PhotosPerPage
}

// FilterCategory keeps items whose category matches the selection
// exactly. The wildcard keeps everything.
func FilterCategory(items []models.MediaItem, category string) []models.MediaItem {
	if category == "" || category == models.Wildcard {
		return items
	}
	out := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// FilterTag keeps items carrying the selected tag by exact string match.
// The wildcard keeps everything.
func FilterTag(items []models.MediaItem, tag string) []models.MediaItem {
	if tag == "" || tag == models.Wildcard {
		return items
	}
	out := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.HasTag(tag) {
			out = append(out, item)
		}
	}
	return out
}

// Sort orders a copy of items by the given mode. Ties keep their
// original relative order, so re-sorting an already sorted sequence is
// a no-op.
func Sort(items []models.MediaItem, mode models.SortOption) []models.MediaItem {
	out := make([]models.MediaItem, len(items))
	copy(out, items)

	switch mode {
	case models.SortAlphabetAsc, models.SortAlphabetDesc:
		col := collate.New(language.Vietnamese)
		sort.SliceStable(out, func(i, j int) bool {
			cmp := col.CompareString(out[i].Title, out[j].Title)
			if mode == models.SortAlphabetDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	case models.SortDateAsc, models.SortDateDesc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := parseDate(out[i].Date), parseDate(out[j].Date)
			if mode == models.SortDateDesc {
				return a.After(b)
			}
			return a.Before(b)
		})
	case models.SortViewsAsc, models.SortViewsDesc:
		sort.SliceStable(out, func(i, j int) bool {
			if mode == models.SortViewsDesc {
				return out[i].Views > out[j].Views
			}
			return out[i].Views < out[j].Views
		})
	}
	return out
}

// parseDate interprets the item date, substituting the fixed epoch for
// missing or unparseable values so they sort as oldest.
func parseDate(value string) time.Time {
	if value == "" {
		value = models.DefaultDate
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02", models.DefaultDate)
	return t
}

// Paginate slices one 1-based page out of the sequence. Out-of-range
// pages clamp to the nearest valid page.
func Paginate(items []models.MediaItem, pageSize, page int) Page {
	total := len(items)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{
		Items:      items[start:end],
		Page:       page,
		PageCount:  pageCount,
		PageSize:   pageSize,
		TotalItems: total,
	}
}

// Run executes the full pipeline over a surface pool.
func Run(pool []models.MediaItem, params Params) Page {
	filtered := FilterTag(FilterCategory(pool, params.Category), params.Tag)
	sorted := Sort(filtered, params.Sort)
	return Paginate(sorted, PageSize(params.Surface), params.Page)
}

// Filtered returns the full filtered and sorted sequence without the
// page slice, which is what the viewers navigate over.
func Filtered(pool []models.MediaItem, params Params) []models.MediaItem {
	return Sort(FilterTag(FilterCategory(pool, params.Category), params.Tag), params.Sort)
}

// Categories lists the wildcard plus the distinct categories present in
// the full surface pool, sorted ascending.
func Categories(pool []models.MediaItem) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range pool {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	sort.Strings(out)
	return append([]string{models.Wildcard}, out...)
}

// Tags lists the wildcard plus the distinct tags present in the
// category-filtered pool, so the options narrow as the category does,
// but never by the tag selection itself.
func Tags(categoryFiltered []models.MediaItem) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range categoryFiltered {
		for _, tag := range item.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	col := collate.New(language.Vietnamese)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i], out[j]) < 0
	})
	return append([]string{models.Wildcard}, out...)
}
