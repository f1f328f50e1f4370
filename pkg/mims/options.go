package mims

// Option configures an Analyzer.
type Option func(*OptionHolder)

// WithDataPath points the Analyzer at a dataset file on disk.
func WithDataPath(path string) Option {
	return func(o *OptionHolder) {
		o.dataPath = path
	}
}

// WithDataURL points the Analyzer at an HTTP dataset source. A configured
// data path takes precedence.
func WithDataURL(url string) Option {
	return func(o *OptionHolder) {
		o.dataURL = url
	}
}

// WithCacheDir sets the directory for the download cache.
func WithCacheDir(dir string) Option {
	return func(o *OptionHolder) {
		o.cacheDir = dir
	}
}

// WithNoCache disables download caching entirely.
func WithNoCache() Option {
	return func(o *OptionHolder) {
		o.noCache = true
	}
}

// WithMemoryOnlyCache keeps the download cache in memory (for the server).
func WithMemoryOnlyCache() Option {
	return func(o *OptionHolder) {
		o.memoryOnlyCache = true
	}
}

// WithGeminiAPIKey sets the Gemini API key for narrative generation.
func WithGeminiAPIKey(key string) Option {
	return func(o *OptionHolder) {
		o.geminiAPIKey = key
	}
}

// WithGeminiModel sets the Gemini model for narrative generation.
func WithGeminiModel(model string) Option {
	return func(o *OptionHolder) {
		o.geminiModel = model
	}
}

// WithGCPProject sets the GCP project for Vertex AI access.
func WithGCPProject(projectID string) Option {
	return func(o *OptionHolder) {
		o.gcpProject = projectID
	}
}

// OptionHolder holds configuration options.
type OptionHolder struct {
	dataPath        string
	dataURL         string
	cacheDir        string
	geminiAPIKey    string
	geminiModel     string
	gcpProject      string
	noCache         bool
	memoryOnlyCache bool
}
