// Package settings holds build metadata and the settings of one colfit
// run.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "colfit"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"build_time"`
}

// Output formats understood by the layout command.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTOML  = "toml"
)

// Run holds the settings of a single execution.
type Run struct {
	MinLogLevel int8
	NoColor     bool
	Output      string
	ConfigPath  string
	// Width is the container width requested on the command line; zero
	// means measure the terminal.
	Width int
}

// NewCliParams returns the defaults for a CLI run.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Output:      OutputTable,
	}
}

// ValidOutput reports whether o names a supported output format.
func ValidOutput(o string) bool {
	switch o {
	case OutputTable, OutputJSON, OutputYAML, OutputTOML:
		return true
	}
	return false
}
