package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tdvu/galleria/models"
	"github.com/tdvu/galleria/utils"
)

// ErrSaveInFlight means a save was requested while another was still
// running. At most one save runs at a time; the second is dropped.
var ErrSaveInFlight = errors.New("persist: a save is already in flight")

// Saver posts the current snapshot to the save endpoint. Explicit saves
// surface failures to the caller; silent saves (periodic, shutdown) log
// and swallow them.
type Saver struct {
	endpoint string
	client   *http.Client
	source   func() models.Snapshot

	busy     atomic.Bool
	mu       sync.Mutex
	lastSave time.Time
}

func NewSaver(endpoint string, source func() models.Snapshot) *Saver {
	return &Saver{
		endpoint: endpoint,
		client:   utils.NewHTTPClient(),
		source:   source,
	}
}

// Busy reports whether a save is currently in flight.
func (s *Saver) Busy() bool {
	return s.busy.Load()
}

// LastSave reports when the last successful save finished.
func (s *Saver) LastSave() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave, !s.lastSave.IsZero()
}

// Save runs one save to completion or failure. There is no
// cancellation beyond the context; a concurrent second save is
// rejected with ErrSaveInFlight.
func (s *Saver) Save(ctx context.Context) (SaveResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return SaveResult{}, ErrSaveInFlight
	}
	defer s.busy.Store(false)

	payload, err := json.Marshal(s.source())
	if err != nil {
		return SaveResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return SaveResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return SaveResult{}, err
	}
	defer res.Body.Close()

	var result SaveResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return SaveResult{}, err
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "Unknown error"
		}
		return result, fmt.Errorf("save endpoint refused snapshot: %s", message)
	}

	s.mu.Lock()
	s.lastSave = time.Now()
	s.mu.Unlock()
	return result, nil
}

// SaveSilent is the periodic and exit-time flavor: best effort, no
// user-visible outcome either way. Failures are logged and dropped.
func (s *Saver) SaveSilent(ctx context.Context) {
	result, err := s.Save(ctx)
	if err != nil {
		if !errors.Is(err, ErrSaveInFlight) {
			slog.With(slog.Any("error", err)).Error("Silent save failed")
		}
		return
	}
	slog.With(
		slog.Int("photos", result.PhotosCount),
		slog.Int("videos", result.VideosCount),
	).Debug("Silent save completed")
}
