package types

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-miner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DispatchConfig selects how a batch is spread across workers.
type DispatchConfig struct {
	// Strategy is one of "sequential", "threads", or "processes".
	Strategy string `json:"strategy" yaml:"strategy"`

	// Workers is the pool size. Ignored by the sequential strategy.
	Workers int `json:"workers" yaml:"workers"`

	// ChunkSize overrides the items-per-chunk split. Zero derives it from
	// the item count divided by Workers.
	ChunkSize int `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the endpoint queried as <BaseURL>?article=<index>&context=<Context>.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Context is the fixed collection name sent with every request.
	Context string `json:"context" yaml:"context"`

	// Start and End bound the inclusive index range.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`

	// PapersDir is the directory that receives <index>.pdf files.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// ExtractBackend identifies the PDF text extraction tool.
type ExtractBackend string

const (
	BackendNative    ExtractBackend = "native"
	BackendPdftotext ExtractBackend = "pdftotext"
)

// OutputFormat selects how the mine report is rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// MineConfig holds settings for the mine stage.
type MineConfig struct {
	// Keyword is matched case-insensitively against space-separated tokens.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Backend selects the text extractor: native or pdftotext.
	Backend ExtractBackend `json:"backend" yaml:"backend"`

	// PapersDir is the directory whose entries are mined.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// Format selects the report format: text, json, or yaml.
	Format OutputFormat `json:"format" yaml:"format"`
}
