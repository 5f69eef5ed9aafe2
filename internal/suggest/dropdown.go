package suggest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"tourmap/pkg/logger"
)

// MinQueryLength is the number of characters typed before suggestions are fetched.
const MinQueryLength = 2

type EventKind int

const (
	EventInput EventKind = iota
	EventKey
	EventBlur
)

// Keys handled by the dropdown.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// Event is what an input surface reports: the current value for EventInput,
// the key name for EventKey.
type Event struct {
	Kind  EventKind
	Value string
	Key   string
}

// InputSurface is the text field the dropdown is attached to. Subscribe
// returns a function that removes the handler.
type InputSurface interface {
	Subscribe(kind EventKind, handler func(Event)) (unsubscribe func())
	Blur()
}

// Fetcher returns the suggestions for a query.
type Fetcher interface {
	Suggestions(ctx context.Context, query string) ([]Suggestion, error)
}

// Navigator opens a page, e.g. the selected artist.
type Navigator func(path string)

// State is a snapshot of the dropdown.
type State struct {
	Suggestions []Suggestion
	Selected    int
	Visible     bool
}

// Dropdown holds the suggestion list and keyboard selection of one search
// field. It lives from NewDropdown until Close.
type Dropdown struct {
	ctx      context.Context
	cancel   context.CancelFunc
	surface  InputSurface
	fetcher  Fetcher
	navigate Navigator
	log      *zap.Logger

	mu          sync.Mutex
	suggestions []Suggestion
	selected    int
	visible     bool
	unsubscribe []func()
}

// NewDropdown attaches a dropdown to surface. Fetches run under ctx and are
// abandoned once Close is called.
func NewDropdown(ctx context.Context, surface InputSurface, fetcher Fetcher, navigate Navigator, log *zap.Logger) *Dropdown {
	ctx, cancel := context.WithCancel(ctx)
	d := &Dropdown{
		ctx:      ctx,
		cancel:   cancel,
		surface:  surface,
		fetcher:  fetcher,
		navigate: navigate,
		log:      logger.OrNop(log),
		selected: -1,
	}
	d.unsubscribe = []func(){
		surface.Subscribe(EventInput, func(e Event) { d.HandleInput(e.Value) }),
		surface.Subscribe(EventKey, func(e Event) { d.HandleKey(e.Key) }),
		surface.Subscribe(EventBlur, func(Event) { d.HandleBlur() }),
	}
	return d
}

// HandleInput reacts to the field's value changing.
func (d *Dropdown) HandleInput(value string) {
	query := strings.TrimSpace(value)
	if query == "" {
		d.hide()
		return
	}
	if utf8.RuneCountInString(query) < MinQueryLength {
		return
	}

	suggestions, err := d.fetcher.Suggestions(d.ctx, query)
	if err != nil {
		d.log.Warn("suggestions fetch failed", zap.String("query", query), zap.Error(err))
		d.hide()
		return
	}

	d.mu.Lock()
	d.suggestions = suggestions
	d.selected = -1
	d.visible = len(suggestions) > 0
	d.mu.Unlock()
}

// HandleKey moves the selection, opens the selected artist or closes the list.
func (d *Dropdown) HandleKey(key string) {
	d.mu.Lock()
	if len(d.suggestions) == 0 {
		d.mu.Unlock()
		return
	}

	switch key {
	case KeyArrowDown:
		d.selected = min(d.selected+1, len(d.suggestions)-1)
		d.mu.Unlock()
	case KeyArrowUp:
		d.selected = max(d.selected-1, -1)
		d.mu.Unlock()
	case KeyEnter:
		i := d.selected
		d.mu.Unlock()
		if i >= 0 {
			d.Select(i)
		}
	case KeyEscape:
		d.mu.Unlock()
		d.hide()
		d.surface.Blur()
	default:
		d.mu.Unlock()
	}
}

// HandleBlur hides the list when focus leaves the field.
func (d *Dropdown) HandleBlur() {
	d.hide()
}

// Select navigates to the artist of suggestion i. Out of range is a no-op.
func (d *Dropdown) Select(i int) {
	d.mu.Lock()
	if i < 0 || i >= len(d.suggestions) {
		d.mu.Unlock()
		return
	}
	s := d.suggestions[i]
	d.mu.Unlock()
	d.navigate(fmt.Sprintf("/artist/%d", s.ArtistID))
}

func (d *Dropdown) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Suggestions: append([]Suggestion(nil), d.suggestions...),
		Selected:    d.selected,
		Visible:     d.visible,
	}
}

// Close detaches every handler and abandons in-flight fetches.
func (d *Dropdown) Close() {
	d.mu.Lock()
	unsubs := d.unsubscribe
	d.unsubscribe = nil
	d.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
	d.cancel()
}

func (d *Dropdown) hide() {
	d.mu.Lock()
	d.suggestions = nil
	d.selected = -1
	d.visible = false
	d.mu.Unlock()
}
