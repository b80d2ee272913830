package timefmt

import (
	"testing"
	"time"
)

func TestRelative(t *testing.T) {
	now := time.Date(2026, time.March, 22, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"seconds ago", 30 * time.Second, "Just now"},
		{"minutes ago", 15 * time.Minute, "15m ago"},
		{"hours ago", 5 * time.Hour, "5h ago"},
		{"days ago", 2 * 24 * time.Hour, "2d ago"},
		{"just under a week", 6*24*time.Hour + 23*time.Hour, "6d ago"},
		{"past the cutoff", 10 * 24 * time.Hour, "12 Mar 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Relative(now.Add(-tt.age), now)
			if got != tt.want {
				t.Errorf("Relative(now-%v) = %q, want %q", tt.age, got, tt.want)
			}
		})
	}
}
