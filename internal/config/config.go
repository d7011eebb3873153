// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Dataset source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Source selects where the tournament datasets are read from: csv or postgres.
	Source string `koanf:"source"`

	// DataDir holds WorldCups.csv, WorldCupMatches.csv and WorldCupPlayers.csv.
	DataDir string `koanf:"data_dir"`

	// PostgresDSN is used when Source is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// PlotsDir and OutputDir receive exported charts and the stats workbook.
	PlotsDir  string `koanf:"plots_dir"`
	OutputDir string `koanf:"output_dir"`

	// Prediction year bounds accepted by the HTTP and MCP surfaces.
	DefaultPredictionYear int `koanf:"default_prediction_year"`
	MinPredictionYear     int `koanf:"min_prediction_year"`
	MaxPredictionYear     int `koanf:"max_prediction_year"`

	// MCPPath is the HTTP path of the MCP streamable endpoint. Empty disables it.
	MCPPath string `koanf:"mcp_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             LogFormatText,
		Addr:                  ":9080",
		Source:                SourceCSV,
		DataDir:               "data",
		PlotsDir:              "plots",
		OutputDir:             "output",
		DefaultPredictionYear: 2030,
		MinPredictionYear:     2025,
		MaxPredictionYear:     2050,
		MCPPath:               "/mcp",
	}
}
