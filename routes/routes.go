package routes

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"

	"github.com/tdvu/galleria/catalog"
	"github.com/tdvu/galleria/config"
	"github.com/tdvu/galleria/events"
	"github.com/tdvu/galleria/models"
	"github.com/tdvu/galleria/persist"
	"github.com/tdvu/galleria/session"
	"github.com/tdvu/galleria/thumbs"
	"github.com/tdvu/galleria/utils"
	"github.com/tdvu/galleria/viewer"
)

func renderJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func renderJSONMessage(w http.ResponseWriter, message string) {
	renderJSON(w, map[string]string{"message": message})
}

func renderJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		renderJSONError(w, http.StatusMethodNotAllowed, fmt.Sprintf("%s required", method))
		return false
	}
	return true
}

// viewRequest carries partial selection changes. Only the fields present
// in the body are applied, in surface, category, tag, sort, page order,
// so the reset rules compose the same way successive user actions would.
type viewRequest struct {
	Surface  *models.Surface    `json:"surface"`
	Category *string            `json:"category"`
	Tag      *string            `json:"tag"`
	Sort     *models.SortOption `json:"sort"`
	Page     *int               `json:"page"`
}

type zoomRequest struct {
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

type dragRequest struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

type playerCommand struct {
	Command string  `json:"command"`
	Value   float64 `json:"value,omitempty"`
	Forward bool    `json:"forward,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
}

type lightboxView struct {
	Open     bool              `json:"open"`
	Item     *models.MediaItem `json:"item,omitempty"`
	Zoom     float64           `json:"zoom"`
	Pan      viewer.Point      `json:"pan"`
	Dragging bool              `json:"dragging"`
}

type playerView struct {
	Open         bool               `json:"open"`
	Item         *models.MediaItem  `json:"item,omitempty"`
	Playing      bool               `json:"playing"`
	CurrentTime  float64            `json:"currentTime"`
	Duration     float64            `json:"duration"`
	Volume       float64            `json:"volume"`
	Muted        bool               `json:"muted"`
	Rate         float64            `json:"rate"`
	TheaterMode  bool               `json:"theaterMode"`
	Fullscreen   bool               `json:"fullscreen"`
	ShuffleOnEnd bool               `json:"shuffleOnEnd"`
	Suggested    []models.MediaItem `json:"suggested"`
}

func lightboxState(l *viewer.Lightbox) lightboxView {
	view := lightboxView{
		Open:     l.IsOpen(),
		Zoom:     l.Zoom(),
		Pan:      l.Pan(),
		Dragging: l.Dragging(),
	}
	if item, ok := l.Current(); ok {
		view.Item = &item
	}
	return view
}

func playerState(p *viewer.Player) playerView {
	view := playerView{
		Open:         p.IsOpen(),
		Playing:      p.Playing(),
		CurrentTime:  p.CurrentTime(),
		Duration:     p.Duration(),
		Volume:       p.Volume(),
		Muted:        p.Muted(),
		Rate:         p.Rate(),
		TheaterMode:  p.TheaterMode(),
		Fullscreen:   p.Fullscreen(),
		ShuffleOnEnd: p.ShuffleOnEnd(),
		Suggested:    p.Suggested(),
	}
	if item, ok := p.Current(); ok {
		view.Item = &item
	}
	return view
}

func Register(
	mux *http.ServeMux,
	cat *catalog.Catalog,
	sess *session.Session,
	deriver *thumbs.Deriver,
	saver *persist.Saver,
	files *persist.FileStore,
	cfg config.Config,
) http.Handler {

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Welcome to Galleria, a wee local media gallery.\n")
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the base of Galleria's API")
	})

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/media", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, sess.Results())
	})

	mux.HandleFunc("/api/view", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			renderJSON(w, sess.State())
		case http.MethodPost:
			var req viewRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				renderJSONError(w, http.StatusBadRequest, "Malformed view request")
				return
			}
			if req.Surface != nil {
				sess.SetSurface(*req.Surface)
			}
			if req.Category != nil {
				sess.SetCategory(*req.Category)
			}
			if req.Tag != nil {
				sess.SetTag(*req.Tag)
			}
			if req.Sort != nil {
				sess.SetSort(*req.Sort)
			}
			if req.Page != nil {
				sess.SetPage(*req.Page)
			}
			renderJSON(w, sess.State())
		default:
			renderJSONError(w, http.StatusMethodNotAllowed, "GET or POST required")
		}
	})

	mux.HandleFunc("/api/facets", func(w http.ResponseWriter, r *http.Request) {
		categories, tags := sess.Facets()
		renderJSON(w, map[string][]string{
			"categories": categories,
			"tags":       tags,
		})
	})

	mux.HandleFunc("/api/media/open", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		id := r.URL.Query().Get("id")
		mediaType := models.MediaType(r.URL.Query().Get("type"))
		var item models.MediaItem
		var ok bool
		switch mediaType {
		case models.TypePhoto:
			item, ok = sess.OpenPhoto(id)
		case models.TypeVideo:
			item, ok = sess.OpenVideo(id)
		default:
			renderJSONError(w, http.StatusBadRequest, "Unknown media type")
			return
		}
		if !ok {
			renderJSONError(w, http.StatusNotFound, "No such item")
			return
		}
		renderJSON(w, item)
	})

	mux.HandleFunc("/api/media/close", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		switch models.MediaType(r.URL.Query().Get("type")) {
		case models.TypePhoto:
			sess.ClosePhoto()
		case models.TypeVideo:
			sess.CloseVideo()
		default:
			renderJSONError(w, http.StatusBadRequest, "Unknown media type")
			return
		}
		renderJSON(w, sess.State())
	})

	mux.HandleFunc("/api/photo/nav", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		direction := r.URL.Query().Get("direction")
		if direction != "next" && direction != "prev" {
			renderJSONError(w, http.StatusBadRequest, "direction must be next or prev")
			return
		}
		item, moved := sess.PhotoNav(direction == "next")
		if !moved {
			renderJSONError(w, http.StatusConflict, "Nothing to navigate to")
			return
		}
		renderJSON(w, item)
	})

	mux.HandleFunc("/api/photo/zoom", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req zoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderJSONError(w, http.StatusBadRequest, "Malformed zoom request")
			return
		}
		var view lightboxView
		known := true
		sess.WithLightbox(func(lightbox *viewer.Lightbox) {
			switch req.Action {
			case "in":
				lightbox.ZoomIn()
			case "out":
				lightbox.ZoomOut()
			case "set":
				lightbox.SetZoom(req.Value)
			case "wheel":
				lightbox.Wheel(req.Value)
			case "reset":
				lightbox.ResetZoom()
			default:
				known = false
			}
			view = lightboxState(lightbox)
		})
		if !known {
			renderJSONError(w, http.StatusBadRequest, "Unknown zoom action")
			return
		}
		renderJSON(w, view)
	})

	mux.HandleFunc("/api/photo/drag", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req dragRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderJSONError(w, http.StatusBadRequest, "Malformed drag request")
			return
		}
		at := viewer.Point{X: req.X, Y: req.Y}
		var view lightboxView
		known := true
		sess.WithLightbox(func(lightbox *viewer.Lightbox) {
			switch req.Action {
			case "start":
				lightbox.StartDrag(at)
			case "move":
				lightbox.Drag(at)
			case "end":
				lightbox.EndDrag()
			default:
				known = false
			}
			view = lightboxState(lightbox)
		})
		if !known {
			renderJSONError(w, http.StatusBadRequest, "Unknown drag action")
			return
		}
		renderJSON(w, view)
	})

	mux.HandleFunc("/api/photo", func(w http.ResponseWriter, r *http.Request) {
		var view lightboxView
		sess.WithLightbox(func(lightbox *viewer.Lightbox) {
			view = lightboxState(lightbox)
		})
		renderJSON(w, view)
	})

	mux.HandleFunc("/api/player", func(w http.ResponseWriter, r *http.Request) {
		var view playerView
		sess.WithPlayer(func(player *viewer.Player) {
			view = playerState(player)
		})
		renderJSON(w, view)
	})

	mux.HandleFunc("/api/player/command", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req playerCommand
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderJSONError(w, http.StatusBadRequest, "Malformed player command")
			return
		}
		var view playerView
		known := true
		sess.WithPlayer(func(player *viewer.Player) {
			switch req.Command {
			case "seek":
				player.Seek(req.Value)
			case "skip":
				player.Skip(req.Forward)
			case "volume":
				player.SetVolume(req.Value)
			case "mute":
				player.ToggleMute()
			case "rate":
				player.SetRate(req.Value)
			case "theater":
				player.ToggleTheaterMode()
			case "shuffle":
				player.SetShuffleOnEnd(req.Enabled)
			default:
				known = false
			}
			view = playerState(player)
		})
		if !known {
			renderJSONError(w, http.StatusBadRequest, "Unknown player command")
			return
		}
		renderJSON(w, view)
	})

	mux.HandleFunc("/api/player/event", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var event viewer.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			renderJSONError(w, http.StatusBadRequest, "Malformed player event")
			return
		}
		sess.HandlePlayerEvent(event)
		var view playerView
		sess.WithPlayer(func(player *viewer.Player) {
			view = playerState(player)
		})
		renderJSON(w, view)
	})

	mux.HandleFunc("/api/video/openrequest", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		item, ok := cat.Lookup(r.URL.Query().Get("id"), models.TypeVideo)
		if !ok {
			renderJSONError(w, http.StatusNotFound, "No such video")
			return
		}
		sess.RequestOpenVideo(item)
		renderJSON(w, item)
	})

	mux.HandleFunc("/api/suggested", func(w http.ResponseWriter, r *http.Request) {
		var suggested []models.MediaItem
		sess.WithPlayer(func(player *viewer.Player) {
			suggested = player.Suggested()
		})
		renderJSON(w, suggested)
	})

	mux.HandleFunc("/api/media/update", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var item models.MediaItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			renderJSONError(w, http.StatusBadRequest, "Malformed media item")
			return
		}
		if err := cat.UpdateField(item); err != nil {
			if errors.Is(err, catalog.ErrIdentityChanged) {
				renderJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			renderJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		renderJSON(w, item)
	})

	mux.HandleFunc("/api/admin/search", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
		snapshot := cat.ExportSnapshot()
		matches := []models.MediaItem{}
		for _, pool := range [][]models.MediaItem{snapshot.Photos, snapshot.Videos} {
			for _, item := range pool {
				if q == "" ||
					strings.Contains(strings.ToLower(item.Title), q) ||
					strings.Contains(strings.ToLower(item.ID), q) {
					matches = append(matches, item)
				}
			}
		}
		renderJSON(w, matches)
	})

	mux.HandleFunc("/api/export", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, cat.ExportSnapshot())
	})

	mux.HandleFunc("/api/import", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var snapshot models.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
			renderJSONError(w, http.StatusBadRequest, "Malformed import document")
			return
		}
		cat.ImportSnapshot(snapshot)
		renderJSON(w, cat.ExportSnapshot())
	})

	mux.HandleFunc("/api/save-db", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var snapshot models.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(persist.SaveResult{Success: false, Error: "Invalid data format"})
			return
		}
		result, err := files.Save(snapshot)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
		json.NewEncoder(w).Encode(result)
	})

	mux.HandleFunc("/api/save", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		result, err := saver.Save(r.Context())
		if err != nil {
			if errors.Is(err, persist.ErrSaveInFlight) {
				renderJSONError(w, http.StatusConflict, err.Error())
				return
			}
			renderJSONError(w, http.StatusBadGateway, err.Error())
			return
		}
		renderJSON(w, result)
	})

	mux.HandleFunc("/api/thumbs/visible", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		id := r.URL.Query().Get("id")
		item, ok := cat.Lookup(id, models.TypeVideo)
		if !ok {
			renderJSONError(w, http.StatusNotFound, "No such video")
			return
		}
		state := deriver.MarkVisible(item)
		renderJSON(w, map[string]string{"id": id, "state": string(state)})
	})

	mux.HandleFunc("/api/thumbs/state", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		renderJSON(w, map[string]string{"id": id, "state": string(deriver.StateOf(id))})
	})

	mux.HandleFunc("/api/thumbs/image", func(w http.ResponseWriter, r *http.Request) {
		result, err := deriver.ResultOf(r.URL.Query().Get("id"))
		if err != nil {
			renderJSONError(w, http.StatusGone, "No derived image for tile")
			return
		}
		if len(result.Data) == 0 {
			// Pre-supplied thumbnail, the asset lives at its own URL
			http.Redirect(w, r, utils.EncodeMediaPath(result.Location), http.StatusTemporaryRedirect)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
		w.Write(result.Data)
	})

	mux.HandleFunc("/api/thumbs/unmount", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		deriver.Unmount(r.URL.Query().Get("id"))
		renderJSONMessage(w, "Tile forgotten")
	})

	mux.HandleFunc("/api/media/thumbnail", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		item, ok := cat.Lookup(r.URL.Query().Get("id"), models.TypeVideo)
		if !ok {
			renderJSONError(w, http.StatusNotFound, "No such video")
			return
		}
		result, err := deriver.DeriveNow(r.Context(), item.Src)
		if err != nil {
			renderJSONError(w, http.StatusBadGateway, err.Error())
			return
		}
		item.Thumbnail = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(result.Data)
		if err := cat.UpdateField(item); err != nil {
			renderJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		renderJSON(w, map[string]interface{}{
			"item":             item,
			"dominant_colours": result.DominantColours,
		})
	})

	mux.HandleFunc("/events", events.Server.ServeHTTP)

	fileServer := http.FileServer(http.Dir(cfg.Galleria.MediaRoot))
	mux.Handle("/image/", fileServer)
	mux.Handle("/video/", fileServer)
	mux.Handle("/thumbs/", fileServer)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Origin, Content-Type, Accept"},
	})

	return c.Handler(mux)
}
