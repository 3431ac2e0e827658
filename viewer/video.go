package viewer

import (
	"math"
	"math/rand"

	"github.com/tdvu/galleria/models"
)

// SuggestedCount is how many other videos the suggestions panel shows.
const SuggestedCount = 8

// SkipStep is the fixed jump for skip commands, in seconds.
const SkipStep = 5.0

var SpeedOptions = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// EventKind enumerates the narrow set of media-element facts the player
// mirrors. Commands are user intents that drive the element; events are
// what the element reports back. Keeping them distinct avoids feedback
// loops between the two.
type EventKind string

const (
	EventPlay           EventKind = "play"
	EventPause          EventKind = "pause"
	EventTimeUpdate     EventKind = "timeupdate"
	EventLoadedMetadata EventKind = "loadedmetadata"
	EventEnded          EventKind = "ended"
	EventFullscreen     EventKind = "fullscreenchange"
)

// Event is one element-reported fact.
type Event struct {
	Kind       EventKind `json:"kind"`
	Time       float64   `json:"time,omitempty"`
	Duration   float64   `json:"duration,omitempty"`
	Fullscreen bool      `json:"fullscreen,omitempty"`
}

// Player is the video viewer state machine. The media element is the
// single source of truth for playing/currentTime/duration; the machine
// mirrors element events rather than driving them, except where a user
// command carries its own immediate state (seek target, volume, rate).
type Player struct {
	open         bool
	item         models.MediaItem
	pool         []models.MediaItem
	playing      bool
	currentTime  float64
	duration     float64
	volume       float64
	muted        bool
	rate         float64
	theaterMode  bool
	fullscreen   bool
	shuffleOnEnd bool
	suggested    []models.MediaItem

	rng *rand.Rand
}

func NewPlayer(rng *rand.Rand) *Player {
	return &Player{volume: 1, rate: 1, rng: rng}
}

// Open switches to an item. The element reloads and autoplay is
// attempted; a rejected autoplay simply means no play event ever
// arrives, which is tolerated silently. Suggestions are resampled from
// the active set every time the open item changes.
func (p *Player) Open(item models.MediaItem, pool []models.MediaItem) {
	p.open = true
	p.item = item
	p.pool = pool
	p.playing = false
	p.currentTime = 0
	p.duration = 0
	p.suggested = p.sampleOthers(SuggestedCount)
}

func (p *Player) Close() {
	p.open = false
	p.playing = false
}

func (p *Player) IsOpen() bool { return p.open }

func (p *Player) Current() (models.MediaItem, bool) {
	return p.item, p.open
}

func (p *Player) Suggested() []models.MediaItem { return p.suggested }

func (p *Player) Playing() bool        { return p.playing }
func (p *Player) CurrentTime() float64 { return p.currentTime }
func (p *Player) Duration() float64    { return p.duration }
func (p *Player) Volume() float64      { return p.volume }
func (p *Player) Muted() bool          { return p.muted }
func (p *Player) Rate() float64        { return p.rate }
func (p *Player) TheaterMode() bool    { return p.theaterMode }
func (p *Player) Fullscreen() bool     { return p.fullscreen }
func (p *Player) ShuffleOnEnd() bool   { return p.shuffleOnEnd }

// Commands. Each one represents an imperative call against the media
// element; the mirrored event is expected to follow.

// Seek targets a position directly; timeupdate events will confirm it.
func (p *Player) Seek(seconds float64) {
	p.currentTime = clampTime(seconds, p.duration)
}

// Skip jumps forward or backward by the fixed step.
func (p *Player) Skip(forward bool) {
	delta := SkipStep
	if !forward {
		delta = -SkipStep
	}
	p.currentTime = clampTime(p.currentTime+delta, p.duration)
}

// SetVolume also derives mute state: volume zero mutes.
func (p *Player) SetVolume(volume float64) {
	p.volume = math.Max(0, math.Min(1, volume))
	p.muted = p.volume == 0
}

func (p *Player) ToggleMute() {
	p.muted = !p.muted
}

// SetRate switches playback speed; unknown rates are ignored.
func (p *Player) SetRate(rate float64) {
	for _, option := range SpeedOptions {
		if option == rate {
			p.rate = rate
			return
		}
	}
}

func (p *Player) ToggleTheaterMode() {
	p.theaterMode = !p.theaterMode
}

func (p *Player) SetShuffleOnEnd(enabled bool) {
	p.shuffleOnEnd = enabled
}

// ApplyEvent mirrors one element-reported fact into the machine. On a
// natural end of media with shuffle enabled it returns a request to
// open a uniformly random other item from the active set. Opening is
// owned by the coordinator, so this is a signal, not a transition.
func (p *Player) ApplyEvent(event Event) *models.MediaItem {
	if !p.open {
		return nil
	}
	switch event.Kind {
	case EventPlay:
		p.playing = true
	case EventPause:
		p.playing = false
	case EventTimeUpdate:
		p.currentTime = event.Time
	case EventLoadedMetadata:
		p.duration = event.Duration
	case EventFullscreen:
		p.fullscreen = event.Fullscreen
	case EventEnded:
		p.playing = false
		if p.shuffleOnEnd && len(p.pool) > 1 {
			if next, ok := p.randomOther(); ok {
				return &next
			}
		}
	}
	return nil
}

// randomOther picks a uniformly random item from the active set,
// excluding the one currently open.
func (p *Player) randomOther() (models.MediaItem, bool) {
	others := p.others()
	if len(others) == 0 {
		return models.MediaItem{}, false
	}
	return others[p.intn(len(others))], true
}

func (p *Player) sampleOthers(n int) []models.MediaItem {
	others := p.others()
	p.shuffle(others)
	if len(others) > n {
		others = others[:n]
	}
	return others
}

func (p *Player) others() []models.MediaItem {
	out := make([]models.MediaItem, 0, len(p.pool))
	for _, item := range p.pool {
		if item.ID != p.item.ID {
			out = append(out, item)
		}
	}
	return out
}

func (p *Player) intn(n int) int {
	if p.rng != nil {
		return p.rng.Intn(n)
	}
	return rand.Intn(n)
}

func (p *Player) shuffle(items []models.MediaItem) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if p.rng != nil {
		p.rng.Shuffle(len(items), swap)
	} else {
		rand.Shuffle(len(items), swap)
	}
}

func clampTime(seconds, duration float64) float64 {
	seconds = math.Max(0, seconds)
	if duration > 0 {
		seconds = math.Min(seconds, duration)
	}
	return seconds
}
