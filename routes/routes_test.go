package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdvu/galleria/catalog"
	"github.com/tdvu/galleria/config"
	"github.com/tdvu/galleria/db"
	"github.com/tdvu/galleria/events"
	"github.com/tdvu/galleria/models"
	"github.com/tdvu/galleria/persist"
	"github.com/tdvu/galleria/query"
	"github.com/tdvu/galleria/session"
	"github.com/tdvu/galleria/thumbs"
)

type stubExtractor struct{}

func (stubExtractor) ExtractFrame(ctx context.Context, src string, at time.Duration, maxWidth int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func testServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
	t.Helper()

	events.Init()

	cat := catalog.New(db.NewMemoryStore())
	cat.Load(models.Snapshot{
		Photos: []models.MediaItem{
			{ID: "p1", Title: "a photo", Category: "Sáng tạo", Src: "/image/a.png", Type: models.TypePhoto},
		},
		Videos: []models.MediaItem{
			{ID: "v1", Title: "a clip", Category: "Sáng tạo", Src: "/video/a.mp4", Type: models.TypeVideo},
			{ID: "v2", Title: "b clip", Category: "Sáng tạo", Src: "/video/b.mp4", Type: models.TypeVideo},
		},
	})

	sess := session.New(cat, rand.New(rand.NewSource(1)))
	deriver := thumbs.NewDeriver(stubExtractor{})

	dir := t.TempDir()
	files := persist.NewFileStore(filepath.Join(dir, "db.json"))

	cfg := config.Config{}
	cfg.Galleria.MediaRoot = dir

	handler := Register(http.NewServeMux(), cat, sess, deriver, nil, files, cfg)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, cat
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func TestRoutes_Health(t *testing.T) {
	server, _ := testServer(t)

	var body map[string]string
	res := getJSON(t, server.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRoutes_MediaDefaultsToVideos(t *testing.T) {
	server, _ := testServer(t)

	var page query.Page
	getJSON(t, server.URL+"/api/media", &page)
	assert.Equal(t, query.VideosPerPage, page.PageSize)
	assert.Equal(t, 2, page.TotalItems)
}

func TestRoutes_ViewSelection(t *testing.T) {
	server, _ := testServer(t)

	var state session.State
	postJSON(t, server.URL+"/api/view", map[string]string{"surface": "photos"}, &state)
	assert.Equal(t, models.SurfacePhotos, state.Surface)

	var page query.Page
	getJSON(t, server.URL+"/api/media", &page)
	assert.Equal(t, query.PhotosPerPage, page.PageSize)
	assert.Equal(t, 1, page.TotalItems)
}

func TestRoutes_OpenPhotoIncrementsViews(t *testing.T) {
	server, _ := testServer(t)

	var item models.MediaItem
	res := postJSON(t, server.URL+"/api/media/open?id=p1&type=photo", nil, &item)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, item.Views)

	var state session.State
	getJSON(t, server.URL+"/api/view", &state)
	require.NotNil(t, state.OpenPhoto)
	assert.Equal(t, "p1", state.OpenPhoto.ID)
}

func TestRoutes_OpenUnknownItem(t *testing.T) {
	server, _ := testServer(t)

	res := postJSON(t, server.URL+"/api/media/open?id=nope&type=photo", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRoutes_MethodEnforcement(t *testing.T) {
	server, _ := testServer(t)

	res, err := http.Get(server.URL + "/api/media/open?id=p1&type=photo")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestRoutes_Facets(t *testing.T) {
	server, _ := testServer(t)

	var facets map[string][]string
	getJSON(t, server.URL+"/api/facets", &facets)
	assert.Equal(t, []string{models.Wildcard, "Sáng tạo"}, facets["categories"])
}

func TestRoutes_SaveDB(t *testing.T) {
	server, cat := testServer(t)

	var result persist.SaveResult
	res := postJSON(t, server.URL+"/api/save-db", cat.ExportSnapshot(), &result)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.PhotosCount)
	assert.Equal(t, 2, result.VideosCount)
}

func TestRoutes_SaveDBRejectsGarbage(t *testing.T) {
	server, _ := testServer(t)

	res, err := http.Post(server.URL+"/api/save-db", "application/json", bytes.NewReader([]byte("{nope")))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var result persist.SaveResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid data format", result.Error)
}

func TestRoutes_ThumbLifecycle(t *testing.T) {
	server, cat := testServer(t)

	// Strip the normalized thumbnail path so the tile actually derives.
	item, ok := cat.Lookup("v1", models.TypeVideo)
	require.True(t, ok)
	item.Thumbnail = ""
	require.NoError(t, cat.UpdateField(item))

	var state map[string]string
	postJSON(t, server.URL+"/api/thumbs/visible?id=v1", nil, &state)
	assert.Equal(t, "generating", state["state"])

	assert.Eventually(t, func() bool {
		getJSON(t, server.URL+"/api/thumbs/state?id=v1", &state)
		return state["state"] == "ready"
	}, 2*time.Second, 10*time.Millisecond)

	res, err := http.Get(server.URL + "/api/thumbs/image?id=v1")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/jpeg", res.Header.Get("Content-Type"))

	postJSON(t, server.URL+"/api/thumbs/unmount?id=v1", nil, nil)
	getJSON(t, server.URL+"/api/thumbs/state?id=v1", &state)
	assert.Equal(t, "idle", state["state"])
}

func TestRoutes_ThumbImageGoneBeforeDerivation(t *testing.T) {
	server, _ := testServer(t)

	res, err := http.Get(server.URL + "/api/thumbs/image?id=v2")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusGone, res.StatusCode)
}

func TestRoutes_UpdateField(t *testing.T) {
	server, cat := testServer(t)

	item, ok := cat.Lookup("v1", models.TypeVideo)
	require.True(t, ok)
	item.Title = "renamed"

	res := postJSON(t, server.URL+"/api/media/update", item, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	got, _ := cat.Lookup("v1", models.TypeVideo)
	assert.Equal(t, "renamed", got.Title)
}

func TestRoutes_UpdateFieldRejectsUnknownItems(t *testing.T) {
	server, _ := testServer(t)

	res := postJSON(t, server.URL+"/api/media/update", models.MediaItem{ID: "ghost", Type: models.TypeVideo}, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRoutes_AdminSearch(t *testing.T) {
	server, _ := testServer(t)

	var matches []models.MediaItem
	getJSON(t, server.URL+"/api/admin/search?q=clip", &matches)
	assert.Len(t, matches, 2)

	getJSON(t, server.URL+"/api/admin/search?q=photo", &matches)
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ID)
}

func TestRoutes_ExportImportRoundTrip(t *testing.T) {
	server, cat := testServer(t)

	var exported models.Snapshot
	getJSON(t, server.URL+"/api/export", &exported)
	require.Len(t, exported.Videos, 2)

	exported.Videos = append(exported.Videos, models.MediaItem{
		Title: "imported", Category: "Sáng tạo", Src: "/video/c.mp4", Type: models.TypeVideo,
	})
	res := postJSON(t, server.URL+"/api/import", exported, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	assert.Len(t, cat.Videos(), 3)
}

func TestRoutes_PlayerFlow(t *testing.T) {
	server, _ := testServer(t)

	res := postJSON(t, server.URL+"/api/media/open?id=v1&type=video", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var view struct {
		Open    bool    `json:"open"`
		Playing bool    `json:"playing"`
		Volume  float64 `json:"volume"`
	}
	postJSON(t, server.URL+"/api/player/event", map[string]string{"kind": "play"}, &view)
	assert.True(t, view.Open)
	assert.True(t, view.Playing)

	postJSON(t, server.URL+"/api/player/command", map[string]interface{}{"command": "volume", "value": 0}, &view)
	assert.Equal(t, 0.0, view.Volume)
}

func TestRoutes_PhotoZoomAndNav(t *testing.T) {
	server, _ := testServer(t)

	postJSON(t, server.URL+"/api/view", map[string]string{"surface": "photos"}, nil)
	res := postJSON(t, server.URL+"/api/media/open?id=p1&type=photo", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var view struct {
		Zoom float64 `json:"zoom"`
	}
	postJSON(t, server.URL+"/api/photo/zoom", map[string]string{"action": "in"}, &view)
	assert.InDelta(t, 1.25, view.Zoom, 1e-9)

	// Only one photo matches the filter, so navigation wraps onto itself.
	var item models.MediaItem
	res = postJSON(t, server.URL+"/api/photo/nav?direction=next", nil, &item)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "p1", item.ID)
}

func TestRoutes_OpenRequestDoesNotCountAView(t *testing.T) {
	server, cat := testServer(t)

	var item models.MediaItem
	res := postJSON(t, server.URL+"/api/video/openrequest?id=v2", nil, &item)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "v2", item.ID)

	stored, _ := cat.Lookup("v2", models.TypeVideo)
	assert.Equal(t, 0, stored.Views)
}
