// genthumbs walks the media root and pre-generates a jpg thumbnail for
// every video that does not have one yet, so the interactive deriver
// never has to touch those files. Safe to re-run; existing thumbnails
// are skipped.
package main

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdvu/galleria/thumbs"
	"github.com/tdvu/galleria/utils"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".m4v":  true,
}

// makeThumbPath mirrors the serving-side location rules: assets under
// video/ get thumbnails under thumbs/, assets under image/ under
// thumbs/image/, both with the extension swapped for .jpg. rel is the
// asset path relative to the media root, slash separated.
func makeThumbPath(mediaRoot, rel string) (string, bool) {
	base := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".jpg"
	switch {
	case strings.HasPrefix(rel, "video/"):
		return filepath.Join(mediaRoot, "thumbs", filepath.FromSlash(strings.TrimPrefix(base, "video/"))), true
	case strings.HasPrefix(rel, "image/"):
		return filepath.Join(mediaRoot, "thumbs", "image", filepath.FromSlash(strings.TrimPrefix(base, "image/"))), true
	default:
		return "", false
	}
}

func main() {
	mediaRoot := utils.GetEnv("MEDIA_ROOT", "public")

	extractor := thumbs.NewFFmpegExtractor(mediaRoot)
	extractor.FFmpegPath = utils.GetEnv("FFMPEG_PATH", "ffmpeg")
	extractor.FFprobePath = utils.GetEnv("FFPROBE_PATH", "ffprobe")

	videoRoot := filepath.Join(mediaRoot, "video")
	if _, err := os.Stat(videoRoot); err != nil {
		fmt.Printf("No video directory at %s, nothing to do\n", videoRoot)
		return
	}

	var generated, skipped, failed int
	err := filepath.Walk(videoRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(mediaRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		thumbPath, ok := makeThumbPath(mediaRoot, rel)
		if !ok {
			return nil
		}
		if _, err := os.Stat(thumbPath); err == nil {
			skipped++
			return nil
		}

		if err := writeThumbnail(extractor, "/"+rel, thumbPath); err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
			return nil
		}
		fmt.Printf("OK   %s\n", thumbPath)
		generated++
		return nil
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d generated, %d skipped, %d failed\n", generated, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// writeThumbnail grabs a frame via the extractor, which resolves the
// root-relative src against the media root itself.
func writeThumbnail(extractor *thumbs.FFmpegExtractor, src, thumbPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	frame, err := extractor.ExtractFrame(ctx, src, thumbs.DefaultSeek, thumbs.DefaultMaxWidth)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(thumbPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return jpeg.Encode(out, frame, &jpeg.Options{Quality: 80})
}
