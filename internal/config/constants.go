package config

// Application constants
const (
	AppName = "dhsclean"

	// EnvPrefix namespaces environment overrides, e.g. DHS_INPUT_PATH.
	EnvPrefix  = "DHS"
	DotEnvFile = ".env"

	DefaultRawPath   = "data/obesity_data_raw.csv"
	DefaultCleanPath = "data/obesity_data_cleaned.csv"
	DefaultLogPath   = "logs/dhsclean.log"

	// DefaultSkipRows is the banner line that precedes the header in the export.
	DefaultSkipRows = 1
	// MinRawColumns is three identifier columns plus three metrics.
	MinRawColumns = 6

	DefaultSampleRows = 10
	// PreviewWidth bounds the Country/Survey previews of removed rows.
	PreviewWidth = 50
)

// ConfigFileLocations are searched in order when no --config flag is given.
var ConfigFileLocations = []string{
	"dhsclean.yaml",
	"configs/dhsclean.yaml",
}
