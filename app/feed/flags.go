package feed

import "strings"

// Flags is the per-feed behavior bitmask as stored. Any value <= 0 disables
// the feed and grants no capability.
type Flags int

const (
	FlagFetchFeed Flags = 1 << iota
	FlagUpdateCatalog
	FlagUniqueNames
	FlagCatalogOnly
	FlagProbeOnly
	FlagAlwaysFetch
	FlagDatePrefix
)

// AdHocFlags is used for a feed URL given directly on the command line.
const AdHocFlags = FlagFetchFeed

var flagNames = []struct {
	bit  Flags
	name string
}{
	{FlagFetchFeed, "fetch"},
	{FlagUpdateCatalog, "catalog"},
	{FlagUniqueNames, "unique"},
	{FlagCatalogOnly, "catalog-only"},
	{FlagProbeOnly, "probe"},
	{FlagAlwaysFetch, "always-fetch"},
	{FlagDatePrefix, "date-prefix"},
}

func (f Flags) has(bit Flags) bool {
	return f > 0 && f&bit != 0
}

func (f Flags) Enabled() bool       { return f > 0 }
func (f Flags) FetchFeed() bool     { return f.has(FlagFetchFeed) }
func (f Flags) UpdateCatalog() bool { return f.has(FlagUpdateCatalog) }
func (f Flags) UniqueNames() bool   { return f.has(FlagUniqueNames) }
func (f Flags) CatalogOnly() bool   { return f.has(FlagCatalogOnly) }
func (f Flags) ProbeOnly() bool     { return f.has(FlagProbeOnly) }
func (f Flags) AlwaysFetch() bool   { return f.has(FlagAlwaysFetch) }
func (f Flags) DatePrefix() bool    { return f.has(FlagDatePrefix) }

func (f Flags) String() string {
	if !f.Enabled() {
		return "disabled"
	}

	var names []string
	for _, fn := range flagNames {
		if f.has(fn.bit) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
