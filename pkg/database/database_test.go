package database

import (
	"testing"
)

func TestShouldMigrate(t *testing.T) {
	tests := []struct {
		mode  string
		force bool
		want  bool
	}{
		{"debug", false, true},
		{"debug", true, true},
		{"release", false, false},
		{"release", true, true},
		{"", false, true},
	}
	for _, tt := range tests {
		if got := ShouldMigrate(tt.mode, tt.force); got != tt.want {
			t.Errorf("ShouldMigrate(%q, %v) = %v, want %v", tt.mode, tt.force, got, tt.want)
		}
	}
}
