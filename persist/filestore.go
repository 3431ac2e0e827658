// Package persist covers best-effort durable saves: the save-db file
// store behind the local endpoint, and the Saver that drives explicit
// and silent saves against it.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdvu/galleria/models"
)

// SaveResult is the save endpoint's wire response, for both outcomes.
type SaveResult struct {
	Success     bool   `json:"success"`
	PhotosCount int    `json:"photosCount,omitempty"`
	VideosCount int    `json:"videosCount,omitempty"`
	Backup      string `json:"backup,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FileStore writes the full catalog snapshot to the data file, taking a
// timestamped backup of the previous contents first.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Save(snapshot models.Snapshot) (SaveResult, error) {
	if snapshot.Photos == nil || snapshot.Videos == nil {
		return SaveResult{Success: false, Error: "Invalid data format"},
			fmt.Errorf("snapshot must carry both photo and video sequences")
	}

	backup, err := f.backupExisting()
	if err != nil {
		return SaveResult{Success: false, Error: err.Error()}, err
	}

	content, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return SaveResult{Success: false, Error: err.Error()}, err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return SaveResult{Success: false, Error: err.Error()}, err
	}
	if err := os.WriteFile(f.Path, content, 0o644); err != nil {
		return SaveResult{Success: false, Error: err.Error()}, err
	}

	return SaveResult{
		Success:     true,
		PhotosCount: len(snapshot.Photos),
		VideosCount: len(snapshot.Videos),
		Backup:      backup,
	}, nil
}

// backupExisting copies the current data file aside before overwriting
// it. A missing file just means there is nothing to back up yet.
func (f *FileStore) backupExisting() (string, error) {
	current, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(f.Path)
	backupPath := fmt.Sprintf("%s.backup-%d%s",
		strings.TrimSuffix(f.Path, ext), time.Now().UnixMilli(), ext)
	if err := os.WriteFile(backupPath, current, 0o644); err != nil {
		return "", err
	}
	return filepath.Base(backupPath), nil
}
