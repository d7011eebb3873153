package repository

import "github.com/okian/cupstats/pkg/logger"

// Default source file names under the data directory.
const (
	DefaultEditionsFile    = "WorldCups.csv"
	DefaultMatchesFile     = "WorldCupMatches.csv"
	DefaultAppearancesFile = "WorldCupPlayers.csv"
)

// Default table names in the Postgres source.
const (
	DefaultEditionsTable    = "world_cups"
	DefaultMatchesTable     = "world_cup_matches"
	DefaultAppearancesTable = "world_cup_players"
)

type options struct {
	goalEventsOnly bool
	logger         logger.Logger
	files          [3]string
	tables         [3]string
}

func defaultOptions() options {
	return options{
		goalEventsOnly: true,
		logger:         logger.Discard(),
		files:          [3]string{DefaultEditionsFile, DefaultMatchesFile, DefaultAppearancesFile},
		tables:         [3]string{DefaultEditionsTable, DefaultMatchesTable, DefaultAppearancesTable},
	}
}

// Option applies a configuration option to a Store.
type Option func(*options)

// WithGoalEventsOnly controls whether appearances without a goal event are
// dropped while loading. Enabled by default.
func WithGoalEventsOnly(enabled bool) Option {
	return func(o *options) {
		o.goalEventsOnly = enabled
	}
}

// WithLogger sets the logger used to report load progress.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFileNames overrides the editions, matches and appearances file names.
// Empty names keep the defaults.
func WithFileNames(editions, matches, appearances string) Option {
	return func(o *options) {
		for i, name := range []string{editions, matches, appearances} {
			if name != "" {
				o.files[i] = name
			}
		}
	}
}

// WithTableNames overrides the Postgres table names. Empty names keep the
// defaults.
func WithTableNames(editions, matches, appearances string) Option {
	return func(o *options) {
		for i, name := range []string{editions, matches, appearances} {
			if name != "" {
				o.tables[i] = name
			}
		}
	}
}
