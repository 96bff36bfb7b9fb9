// Package data provides configuration data types for the spanlens application.
package data

import (
	"fmt"
	"os"
	"time"
)

// Flags represents CLI command-line flags. Unset pointers and zero values
// leave the configuration file settings in place.
type Flags struct {
	LogLevel   *string // Log level (e.g., debug, info, warn, error)
	LogFile    *string // Path to log file
	Command    *string // Initial view, e.g. spans or examples@<dataset>
	Source     *string // Data source kind
	Endpoint   *string // GraphQL endpoint
	Project    *string // Project id scoping spans
	Dataset    *string // Dataset id scoping examples
	PageSize   *int    // Connection page size
	Threshold  *int    // Rows left before fetching more
	Profile    *string // AWS profile for the s3 source
	Region     *string // AWS region for the s3 source
	Bucket     *string // Span export bucket
	DBPath     *string // Offline store path
	Wide       *bool   // Show wide columns
	Logoless   *bool   // Hide the logo
	Crumbsless *bool   // Hide breadcrumbs
}

// NewFlags creates a new Flags instance with all pointer fields initialized.
// All pointers are allocated but their values are not set.
func NewFlags() *Flags {
	return &Flags{
		LogLevel:   new(string),
		LogFile:    new(string),
		Command:    new(string),
		Source:     new(string),
		Endpoint:   new(string),
		Project:    new(string),
		Dataset:    new(string),
		PageSize:   new(int),
		Threshold:  new(int),
		Profile:    new(string),
		Region:     new(string),
		Bucket:     new(string),
		DBPath:     new(string),
		Wide:       new(bool),
		Logoless:   new(bool),
		Crumbsless: new(bool),
	}
}

// UI represents user interface configuration settings.
type UI struct {
	EnableMouse bool `yaml:"enableMouse"`
	Logoless    bool `yaml:"logoless"`
	Crumbsless  bool `yaml:"crumbsless"`
	Wide        bool `yaml:"wide"`
}

// Logger represents logging configuration settings.
type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Source kinds.
const (
	SourceGraphQL = "graphql"
	SourceS3      = "s3"
	SourceSQLite  = "sqlite"
)

const (
	// DefaultEndpoint is the GraphQL endpoint of a local observability server.
	DefaultEndpoint = "http://localhost:6006/graphql"

	// DefaultTokenEnv names the environment variable holding the API key.
	DefaultTokenEnv = "SPANLENS_API_KEY"
)

// Source configures where connection pages come from.
type Source struct {
	Kind     string `yaml:"kind"`
	Endpoint string `yaml:"endpoint,omitempty"`
	TokenEnv string `yaml:"tokenEnv,omitempty"`

	Bucket     string `yaml:"bucket,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
	Profile    string `yaml:"profile,omitempty"`
	Region     string `yaml:"region,omitempty"`
	S3Endpoint string `yaml:"s3Endpoint,omitempty"`

	DBPath string `yaml:"dbPath,omitempty"`

	// CacheTTL enables the page cache when set, e.g. "30s".
	CacheTTL string `yaml:"cacheTTL,omitempty"`
}

// NewSource returns the default GraphQL source settings.
func NewSource() Source {
	return Source{
		Kind:     SourceGraphQL,
		Endpoint: DefaultEndpoint,
		TokenEnv: DefaultTokenEnv,
	}
}

// Validate fills in defaults and checks the source kind.
func (s *Source) Validate() error {
	if s.Kind == "" {
		s.Kind = SourceGraphQL
	}
	switch s.Kind {
	case SourceGraphQL:
		if s.Endpoint == "" {
			s.Endpoint = DefaultEndpoint
		}
		if s.TokenEnv == "" {
			s.TokenEnv = DefaultTokenEnv
		}
	case SourceS3:
		if s.Bucket == "" {
			return fmt.Errorf("s3 source: bucket is required")
		}
	case SourceSQLite:
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}

	return nil
}

// Token returns the API key from the configured environment variable.
func (s *Source) Token() string {
	if s.TokenEnv == "" {
		return ""
	}
	return os.Getenv(s.TokenEnv)
}

// CacheDuration returns the page cache TTL, zero when caching is off.
func (s *Source) CacheDuration() (time.Duration, error) {
	if s.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cacheTTL %q: %w", s.CacheTTL, err)
	}
	return d, nil
}
