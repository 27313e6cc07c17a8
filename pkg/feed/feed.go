// Package feed defines the vendor feeds, data specifications and the
// documented vendor result codes shared by the session manager, the
// schema router and the coordinator.
package feed

// Feed identifies one of the two vendor data sources.
type Feed string

const (
	// Central is the central-racing feed.
	Central Feed = "central"
	// Regional is the regional-racing feed. Regional tables carry the
	// "_REG" suffix and the session applies the regional recovery policy.
	Regional Feed = "regional"
)

// String returns the feed name.
func (f Feed) String() string { return string(f) }

// Valid reports whether f is a known feed.
func (f Feed) Valid() bool { return f == Central || f == Regional }

// TableSuffix returns the suffix appended to destination table names.
func (f Feed) TableSuffix() string {
	if f == Regional {
		return "_REG"
	}
	return ""
}

// Path selects the destination table family.
type Path string

const (
	// Accumulated is the historical/setup table family (NL_ prefix).
	Accumulated Path = "accumulated"
	// RealTime is the live-monitor table family (RT_ prefix).
	RealTime Path = "realtime"
)

// TablePrefix returns the table-name prefix of the path.
func (p Path) TablePrefix() string {
	if p == RealTime {
		return "RT_"
	}
	return "NL_"
}

// Historical data specifications.
const (
	SpecRace = "RACE" // race definition, runner results, payouts
	SpecDiff = "DIFF" // master data (horse, jockey, trainer, owner, ...)
	SpecYsch = "YSCH" // schedule
	SpecToku = "TOKU" // special registrations
	SpecSlop = "SLOP" // hill training
	SpecWood = "WOOD" // woodchip training
	SpecBlod = "BLOD" // pedigree
	SpecO1   = "O1"   // win/place/bracket odds
	SpecO2   = "O2"   // quinella odds
	SpecO3   = "O3"   // wide odds
	SpecO4   = "O4"   // exacta odds
	SpecO5   = "O5"   // trio odds
	SpecO6   = "O6"   // trifecta odds
)

// Real-time data specifications.
const (
	SpecRTRace   = "0B12" // race details and runners
	SpecRTWeight = "0B11" // horse weights
	SpecRTOdds   = "0B30" // odds snapshot
	SpecRTPayout = "0B31" // payouts
	SpecRTChange = "0B16" // jockey / course changes
)

// RealTimeSpecs lists the default live-monitor data specs.
func RealTimeSpecs() []string {
	return []string{SpecRTRace, SpecRTWeight, SpecRTOdds, SpecRTPayout, SpecRTChange}
}

// OpenOption selects the vendor open mode. Semantics are feed-dependent;
// Setup is the only mode that behaves deterministically across both feeds
// for historical backfill.
type OpenOption int

const (
	// OptionNormal requests differential data.
	OptionNormal OpenOption = 1
	// OptionThisWeek requests only the current week.
	OptionThisWeek OpenOption = 2
	// OptionSetup requests a full setup download.
	OptionSetup OpenOption = 3
	// OptionSplitSetup requests a split setup download.
	OptionSplitSetup OpenOption = 4
)

// RegionalInitKey is the only initialise key the regional vendor component
// accepts. Any other value fails with CodeAuthError.
const RegionalInitKey = "UNKNOWN"
