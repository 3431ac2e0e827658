package catalog

import (
	"strings"

	"github.com/tdvu/galleria/models"
)

// Extensions that mark a thumbnail field as still pointing at raw video.
var videoExtensions = []string{".mp4", ".mov", ".m4v", ".avi", ".mkv", ".webm"}

func hasVideoExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// swapVideoExtension replaces a trailing video extension with .jpg,
// leaving paths without one untouched.
func swapVideoExtension(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return path[:len(path)-len(ext)] + ".jpg"
		}
	}
	return path
}

func hasFoldPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && strings.EqualFold(path[:len(prefix)], prefix)
}

// NormalizeThumbnail rewrites a video item whose thumbnail is missing, or
// still points at the video file itself, to the conventional generated
// still under /thumbs. It is a pure path transform: whether the derived
// file actually exists is an external assumption. Non-video items and
// items that already carry an image thumbnail pass through untouched.
//
//	/video/Cat/clip.mp4 -> /thumbs/Cat/clip.jpg
//	/image/Cat/clip.mov -> /thumbs/image/Cat/clip.jpg
func NormalizeThumbnail(item models.MediaItem) models.MediaItem {
	if item.Type != models.TypeVideo {
		return item
	}
	thumb := item.Thumbnail
	if thumb != "" && !hasVideoExtension(thumb) {
		return item
	}
	srcPath := thumb
	if srcPath == "" {
		srcPath = item.Src
	}
	jpgPath := swapVideoExtension(srcPath)
	if hasFoldPrefix(srcPath, "/video/") {
		jpgPath = "/thumbs" + jpgPath[len("/video"):]
	} else if hasFoldPrefix(srcPath, "/image/") {
		jpgPath = "/thumbs/image" + jpgPath[len("/image"):]
	}
	item.Thumbnail = jpgPath
	return item
}

func normalizeThumbnails(items []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, len(items))
	for i, item := range items {
		out[i] = NormalizeThumbnail(item)
	}
	return out
}
