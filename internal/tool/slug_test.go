// Copyright 2026 fanjia1024
// Tests for slug generation

package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Create Ticket", "create-ticket"},
		{"  Weather  API!! ", "weather-api"},
		{"v2_lookup", "v2-lookup"},
		{"---", "tool"},
		{"CRM Sync (beta)", "crm-sync-beta"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestUniqueSlug(t *testing.T) {
	existing := map[string]bool{"create-ticket": true, "create-ticket-2": true}
	taken := func(s string) bool { return existing[s] }

	assert.Equal(t, "weather-api", UniqueSlug("weather-api", taken))
	assert.Equal(t, "create-ticket-3", UniqueSlug("create-ticket", taken))
}
