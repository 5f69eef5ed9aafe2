package suggest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeSurface records handlers so tests can fire input events without a browser.
type fakeSurface struct {
	handlers map[EventKind][]func(Event)
	blurred  int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{handlers: make(map[EventKind][]func(Event))}
}

func (s *fakeSurface) Subscribe(kind EventKind, h func(Event)) func() {
	s.handlers[kind] = append(s.handlers[kind], h)
	idx := len(s.handlers[kind]) - 1
	return func() { s.handlers[kind][idx] = nil }
}

func (s *fakeSurface) Blur() { s.blurred++ }

func (s *fakeSurface) fire(e Event) {
	for _, h := range s.handlers[e.Kind] {
		if h != nil {
			h(e)
		}
	}
}

func (s *fakeSurface) subscribed() int {
	n := 0
	for _, hs := range s.handlers {
		for _, h := range hs {
			if h != nil {
				n++
			}
		}
	}
	return n
}

type fakeFetcher struct {
	queries []string
	result  []Suggestion
	err     error
}

func (f *fakeFetcher) Suggestions(_ context.Context, q string) ([]Suggestion, error) {
	f.queries = append(f.queries, q)
	return f.result, f.err
}

var three = []Suggestion{
	{Text: "Queen", Type: TypeArtist, ArtistID: 1},
	{Text: "Queens of the Stone Age", Type: TypeArtist, ArtistID: 3},
	{Text: "Brian May", Type: TypeMember, ArtistID: 1},
}

func setup(t *testing.T, f *fakeFetcher) (*Dropdown, *fakeSurface, *[]string) {
	t.Helper()
	s := newFakeSurface()
	var visited []string
	d := NewDropdown(context.Background(), s, f, func(p string) { visited = append(visited, p) }, nil)
	t.Cleanup(d.Close)
	return d, s, &visited
}

func TestDropdown_Input(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		fetcher     *fakeFetcher
		wantQueries int
		wantVisible bool
		wantCount   int
	}{
		{name: "shows results", value: " qu ", fetcher: &fakeFetcher{result: three}, wantQueries: 1, wantVisible: true, wantCount: 3},
		{name: "single character ignored", value: "q", fetcher: &fakeFetcher{result: three}, wantQueries: 0},
		{name: "empty result hidden", value: "zz", fetcher: &fakeFetcher{}, wantQueries: 1},
		{name: "fetch error hides", value: "qu", fetcher: &fakeFetcher{err: errors.New("offline")}, wantQueries: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, s, _ := setup(t, tt.fetcher)
			s.fire(Event{Kind: EventInput, Value: tt.value})

			st := d.State()
			if len(tt.fetcher.queries) != tt.wantQueries {
				t.Errorf("queries = %v, want %d", tt.fetcher.queries, tt.wantQueries)
			}
			if st.Visible != tt.wantVisible || len(st.Suggestions) != tt.wantCount || st.Selected != -1 {
				t.Errorf("state = %+v", st)
			}
		})
	}
}

func TestDropdown_EmptyInputHides(t *testing.T) {
	d, s, _ := setup(t, &fakeFetcher{result: three})
	s.fire(Event{Kind: EventInput, Value: "qu"})
	s.fire(Event{Kind: EventInput, Value: "   "})
	if st := d.State(); st.Visible || len(st.Suggestions) != 0 {
		t.Errorf("state after clearing input = %+v", st)
	}
}

func TestDropdown_KeyboardSelection(t *testing.T) {
	d, s, visited := setup(t, &fakeFetcher{result: three})
	s.fire(Event{Kind: EventInput, Value: "qu"})

	steps := []struct {
		key  string
		want int
	}{
		{KeyArrowUp, -1},
		{KeyArrowDown, 0},
		{KeyArrowDown, 1},
		{KeyArrowDown, 2},
		{KeyArrowDown, 2},
		{KeyArrowUp, 1},
		{"Tab", 1},
	}
	for _, step := range steps {
		s.fire(Event{Kind: EventKey, Key: step.key})
		if got := d.State().Selected; got != step.want {
			t.Fatalf("after %s selected = %d, want %d", step.key, got, step.want)
		}
	}

	s.fire(Event{Kind: EventKey, Key: KeyEnter})
	if len(*visited) != 1 || (*visited)[0] != "/artist/3" {
		t.Errorf("visited = %v, want [/artist/3]", *visited)
	}
}

func TestDropdown_EnterWithoutSelection(t *testing.T) {
	_, s, visited := setup(t, &fakeFetcher{result: three})
	s.fire(Event{Kind: EventInput, Value: "qu"})
	s.fire(Event{Kind: EventKey, Key: KeyEnter})
	if len(*visited) != 0 {
		t.Errorf("navigated without a selection: %v", *visited)
	}
}

func TestDropdown_EscapeAndBlur(t *testing.T) {
	d, s, _ := setup(t, &fakeFetcher{result: three})
	s.fire(Event{Kind: EventInput, Value: "qu"})
	s.fire(Event{Kind: EventKey, Key: KeyEscape})
	if st := d.State(); st.Visible || s.blurred != 1 {
		t.Errorf("escape: state %+v blurred %d", st, s.blurred)
	}

	s.fire(Event{Kind: EventInput, Value: "qu"})
	s.fire(Event{Kind: EventBlur})
	if d.State().Visible {
		t.Error("still visible after blur")
	}
}

func TestDropdown_KeysIgnoredWithoutSuggestions(t *testing.T) {
	d, s, _ := setup(t, &fakeFetcher{})
	s.fire(Event{Kind: EventKey, Key: KeyArrowDown})
	s.fire(Event{Kind: EventKey, Key: KeyEscape})
	if d.State().Selected != -1 || s.blurred != 0 {
		t.Error("keys handled with no suggestions")
	}
}

func TestDropdown_CloseUnsubscribes(t *testing.T) {
	f := &fakeFetcher{result: three}
	s := newFakeSurface()
	d := NewDropdown(context.Background(), s, f, func(string) {}, nil)
	if s.subscribed() != 3 {
		t.Fatalf("subscribed handlers = %d, want 3", s.subscribed())
	}
	d.Close()
	if s.subscribed() != 0 {
		t.Errorf("handlers left after Close: %d", s.subscribed())
	}
	s.fire(Event{Kind: EventInput, Value: "qu"})
	if len(f.queries) != 0 {
		t.Error("fetch after Close")
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/suggestions" || r.URL.Query().Get("q") != "que en" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"suggestions":[{"text":"Queen","type":"artist","artist_id":1}]}`))
	}))
	defer srv.Close()

	got, err := NewHTTPFetcher(srv.URL, nil).Suggestions(context.Background(), "que en")
	if err != nil {
		t.Fatalf("Suggestions() returned error: %v", err)
	}
	if len(got) != 1 || got[0].ArtistID != 1 {
		t.Errorf("Suggestions() = %+v", got)
	}

	if _, err := NewHTTPFetcher(srv.URL, nil).Suggestions(context.Background(), "x"); err == nil {
		t.Error("Suggestions() error = nil on 400")
	}
}
