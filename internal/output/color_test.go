package output

import (
	"bytes"
	"testing"
)

func TestResolveColorMode(t *testing.T) {
	tests := []struct {
		mode  string
		isTTY bool
		want  bool
	}{
		{ColorNever, true, false},
		{ColorAlways, false, true},
		{ColorAuto, true, true},
		{ColorAuto, false, false},
		{"bogus", true, true},
	}
	for _, tt := range tests {
		if got := ResolveColorMode(tt.mode, tt.isTTY); got != tt.want {
			t.Errorf("ResolveColorMode(%q, %v) = %v, want %v", tt.mode, tt.isTTY, got, tt.want)
		}
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("bytes.Buffer should not be a TTY")
	}
}
