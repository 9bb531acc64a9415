package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/timebomb"
)

func TestFormatAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tc := range tests {
		if got := formatAgo(testNow.Add(-tc.ago), testNow); got != tc.want {
			t.Errorf("formatAgo(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"über-projekt", 5, "über…"},
		{"anything", 0, "anything"},
	}
	for _, tc := range tests {
		if got := truncStr(tc.s, tc.maxLen); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.s, tc.maxLen, got, tc.want)
		}
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := truncateToHeight(s, 2); got != "a\nb\n" {
		t.Errorf("truncateToHeight(2) = %q, want %q", got, "a\nb\n")
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Errorf("truncateToHeight(0) = %q, want input unchanged", got)
	}
}

func TestScrollLines(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := scrollLines(s, 1, 2); got != "b\nc" {
		t.Errorf("scrollLines(1, 2) = %q, want %q", got, "b\nc")
	}
	if got := scrollLines(s, 10, 2); got != "d" {
		t.Errorf("scrollLines past end = %q, want last line", got)
	}
}

func TestTimerStyleRendersText(t *testing.T) {
	for _, c := range []timebomb.Class{timebomb.ClassNew, timebomb.ClassArmed, timebomb.ClassExpired} {
		if got := timerStyle(c).Render("timer"); !strings.Contains(got, "timer") {
			t.Errorf("timerStyle(%s).Render = %q, want to contain text", c, got)
		}
	}
}

func TestLifeStyleRendersText(t *testing.T) {
	for s := domain.LifeInvalid; s <= domain.LifeNew; s++ {
		if got := lifeStyle(s).Render(s.String()); !strings.Contains(got, s.String()) {
			t.Errorf("lifeStyle(%d).Render = %q, want to contain %q", s, got, s.String())
		}
	}
}

func TestShimmerLogo(t *testing.T) {
	logo := renderShimmerLogo(7)
	for _, ch := range "CBDEMO" {
		if !strings.ContainsRune(logo, ch) {
			t.Errorf("logo missing %q: %q", ch, logo)
		}
	}
}
