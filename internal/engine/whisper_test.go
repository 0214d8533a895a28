package engine

import "testing"

func TestFilterHallucinations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"blank audio only", "[BLANK_AUDIO]", ""},
		{"silence variants", " [silence] (silence) ", ""},
		{"marker mid-sentence keeps surrounding spacing", "Hello [MUSIC] world", "Hello  world"},
		{"music paren", "(music)", ""},
		{"plain text untouched", "ask not what your country can do for you", "ask not what your country can do for you"},
		{"leading and trailing whitespace", "  hello there  ", "hello there"},
		{"marker at edge", "[BLANK_AUDIO] hello", "hello"},
		{"case sensitive", "[blank_audio]", "[blank_audio]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterHallucinations(tt.in); got != tt.want {
				t.Errorf("filterHallucinations(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWhisperBackendBadPath(t *testing.T) {
	_, err := newWhisperBackend("/nonexistent/model.bin", 4)
	if err == nil {
		t.Fatal("newWhisperBackend with bad path should return error")
	}
}
