package feed

import "testing"

func TestFlagBits(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		check func(Flags) bool
		want  bool
	}{
		{"fetch", 1, Flags.FetchFeed, true},
		{"catalog", 2, Flags.UpdateCatalog, true},
		{"unique", 4, Flags.UniqueNames, true},
		{"catalog only", 8, Flags.CatalogOnly, true},
		{"probe", 16, Flags.ProbeOnly, true},
		{"always fetch", 32, Flags.AlwaysFetch, true},
		{"date prefix", 64, Flags.DatePrefix, true},
		{"download and catalog has no probe", 3, Flags.ProbeOnly, false},
		{"download and catalog has catalog", 3, Flags.UpdateCatalog, true},
		{"negative grants nothing", -1, Flags.FetchFeed, false},
		{"negative with catalog bit", -2, Flags.UpdateCatalog, false},
		{"zero is disabled", 0, Flags.Enabled, false},
		{"negative is disabled", -5, Flags.Enabled, false},
		{"catalog without fetch bit is enabled", 2, Flags.Enabled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.flags); got != tt.want {
				t.Errorf("Expected %v for flags %d, got %v", tt.want, int(tt.flags), got)
			}
		})
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		flags Flags
		want  string
	}{
		{0, "disabled"},
		{-3, "disabled"},
		{3, "fetch|catalog"},
		{1 | 2 | 8, "fetch|catalog|catalog-only"},
		{128, "none"},
	}

	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("Expected %q for flags %d, got %q", tt.want, int(tt.flags), got)
		}
	}
}
