package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/schema"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// defaultThresholdKey is the staleness map key used as the fallback for
// document types without their own threshold.
const defaultThresholdKey = "default"

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Corpus CorpusConfig      `yaml:"corpus"`
	Schema SchemaConfig      `yaml:"schema"`
	Checks ChecksConfig      `yaml:"checks"`
	Cache  CacheConfig       `yaml:"cache"`
	Server ServerConfig      `yaml:"server"`
}

// Validate validates the configuration. Failures wrap
// apperr.ErrInvalidConfig so callers can map them to a usage exit.
func (c *Config) Validate() error {
	sections := []func() error{
		c.Corpus.Validate,
		c.Schema.Validate,
		c.Checks.Validate,
		c.Cache.Validate,
		c.Server.Validate,
	}
	for _, validate := range sections {
		if err := validate(); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalidConfig, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// CorpusConfig locates the documentation corpus on disk.
type CorpusConfig struct {
	Root string `yaml:"root"`
	// Extensions filters which files are loaded; defaults to [".md"].
	Extensions []string `yaml:"extensions"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// SchemaConfig declares the frontmatter schema: required fields and the
// controlled vocabulary for categories, types, statuses, and tags.
type SchemaConfig struct {
	RequiredFields []string `yaml:"required_fields"`
	CategoryEnum   []string `yaml:"category_enum"`
	TypeEnum       []string `yaml:"type_enum"`
	StatusEnum     []string `yaml:"status_enum"`
	// TagVocabulary is optional; empty disables the tag membership check.
	TagVocabulary []string `yaml:"tag_vocabulary"`
}

// Validate validates the schema configuration.
func (c *SchemaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CategoryEnum, validation.Required),
		validation.Field(&c.TypeEnum, validation.Required),
	)
}

// Schema converts the configuration into the validator's schema type.
func (c *SchemaConfig) Schema() *schema.Schema {
	return &schema.Schema{
		RequiredFields: c.RequiredFields,
		CategoryEnum:   c.CategoryEnum,
		TypeEnum:       c.TypeEnum,
		StatusEnum:     c.StatusEnum,
		TagVocabulary:  c.TagVocabulary,
	}
}

// ChecksConfig tunes the hygiene checks.
type ChecksConfig struct {
	// StalenessDays maps a document type to its freshness threshold in
	// days. The "default" key is the fallback for unlisted types.
	StalenessDays map[string]int `yaml:"staleness_days"`
	// EntryPoints are paths excluded from orphan detection.
	EntryPoints []string `yaml:"entry_points"`
	Strict      bool     `yaml:"strict"`
}

// Validate validates the checks configuration.
func (c *ChecksConfig) Validate() error {
	for typ, days := range c.StalenessDays {
		if days <= 0 {
			return fmt.Errorf("checks: staleness threshold for %q must be positive, got %d", typ, days)
		}
	}
	return nil
}

// DefaultStalenessDays returns the fallback threshold, or zero when no
// default is configured (which disables staleness for unlisted types).
func (c *ChecksConfig) DefaultStalenessDays() int {
	return c.StalenessDays[defaultThresholdKey]
}

// CacheConfig controls the optional SQLite result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("cache: enabled but path is empty")
	}
	return nil
}

// ServerConfig holds report-server configuration (serve mode only).
type ServerConfig struct {
	Port int        `yaml:"port"`
	Auth AuthConfig `yaml:"auth"`
}

// Address returns the HTTP listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// AuthConfig holds authentication configuration for serve mode.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Corpus: CorpusConfig{
			Root:       ".",
			Extensions: []string{".md"},
		},
		Schema: SchemaConfig{
			RequiredFields: []string{"title", "category", "type", "updated"},
			CategoryEnum:   []string{"security", "seo", "performance", "tools", "webdesign", "testing"},
			TypeEnum:       []string{"howto", "reference", "concept", "tutorial", "explanation"},
			StatusEnum:     []string{"stable", "draft", "deprecated"},
		},
		Checks: ChecksConfig{
			StalenessDays: map[string]int{
				"reference":         365,
				"howto":             180,
				defaultThresholdKey: 540,
			},
			EntryPoints: []string{"README.md", "index.md"},
		},
		Cache: CacheConfig{
			Path: "./doclint-cache.db",
		},
		Server: ServerConfig{
			Port: 8080,
			Auth: AuthConfig{Mode: AuthModeDisabled},
		},
	}
}
