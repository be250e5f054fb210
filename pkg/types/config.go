package types

import "time"

// HTTPConfig holds settings for fetching a remote bibliography.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibcite/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on 429/503 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Token is an optional bearer token for private bibliography URLs.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// OutputFormat selects the sink used for rendered citations.
type OutputFormat string

const (
	FormatHTML     OutputFormat = "html"
	FormatMarkdown OutputFormat = "markdown"
	FormatTerminal OutputFormat = "terminal"
	FormatText     OutputFormat = "text"
	FormatCSL      OutputFormat = "csl"
	FormatJSON     OutputFormat = "json"
)

// RenderConfig holds settings for the render and inject commands.
type RenderConfig struct {
	HTTPConfig `yaml:",inline"`

	// Format selects the output sink.
	Format OutputFormat `json:"format" yaml:"format"`

	// DOIBase is the resolver prefix for DOI links (default "https://doi.org/").
	DOIBase string `json:"doi_base" yaml:"doi_base"`

	// Output is the output path; empty means stdout.
	Output string `json:"output" yaml:"output"`

	// PagePath is the HTML page that receives injected list items.
	PagePath string `json:"page" yaml:"page"`

	// TargetID is the id of the element whose children are replaced
	// (default "bib-list").
	TargetID string `json:"target_id" yaml:"target_id"`

	// WordWrap is the terminal sink wrap width (default 80).
	WordWrap int `json:"word_wrap" yaml:"word_wrap"`
}

// LibraryConfig holds settings for the SQLite record library.
type LibraryConfig struct {
	// Dir is the directory that holds library.db and exports.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
