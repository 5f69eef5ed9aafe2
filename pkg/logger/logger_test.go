package logger

import "testing"

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"warn", "warn", "json", false},
		{"unknown level", "loud", "json", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New("tourmap-test", tc.level, tc.format)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("New(%q) error = nil, want error", tc.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) returned error: %v", tc.level, err)
			}
			if log == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
