package cache

import (
	"testing"
	"time"
)

func TestRetentionPolicy(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		policy  RetentionPolicy
		modTime time.Time
		want    bool
	}{
		{"keep forever", KeepForeverPolicy(), now.Add(-365 * 24 * time.Hour), false},
		{"default fresh", DefaultRetentionPolicy(), now.Add(-time.Hour), false},
		{"default expired", DefaultRetentionPolicy(), now.Add(-31 * 24 * time.Hour), true},
		{"custom boundary", RetentionPolicy{MaxAge: time.Hour}, now.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Expired(tt.modTime, now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}

	if KeepForeverPolicy().ShouldPurge() {
		t.Error("KeepForeverPolicy should not purge")
	}
	if !DefaultRetentionPolicy().ShouldPurge() {
		t.Error("DefaultRetentionPolicy should purge")
	}
}
