package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"apidoc/internal/adapter/comment"
	"apidoc/internal/domain"
	"apidoc/internal/port"
)

// FileNames are tried in order by LoadFromDir. YAML is a superset of JSON, so
// apidoc.json is read by the same decoder.
var FileNames = []string{"apidoc.yaml", "apidoc.yml", "apidoc.json"}

// Config holds the project metadata and the run options.
type Config struct {
	Name        string           `yaml:"name"`
	Version     string           `yaml:"version" validate:"required,semver"`
	Description string           `yaml:"description"`
	Title       string           `yaml:"title"`
	URL         string           `yaml:"url" validate:"omitempty,url"`
	SampleURL   domain.SampleURL `yaml:"sampleUrl" validate:"omitempty,url"`
	Header      *PageConfig      `yaml:"header"`
	Footer      *PageConfig      `yaml:"footer"`

	Input    InputConfig   `yaml:"input"`
	Output   OutputConfig  `yaml:"output"`
	Logging  LoggingConfig `yaml:"logging"`
	Markdown bool          `yaml:"markdown"`
	// ExcludePrivate drops endpoints marked @apiPrivate.
	ExcludePrivate bool `yaml:"excludePrivate"`
	// Workers bounds the pipeline's worker pools; 0 means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`

	dir string
}

// PageConfig points at a markdown file rendered into the project header or
// footer. Filename is relative to the configuration file.
type PageConfig struct {
	Title    string `yaml:"title"`
	Filename string `yaml:"filename" validate:"required"`
}

// InputConfig selects the files that are scanned.
type InputConfig struct {
	Src            []string                        `yaml:"src" validate:"min=1,dive,required"`
	IncludeFilters []string                        `yaml:"includeFilters"`
	ExcludeFilters []string                        `yaml:"excludeFilters"`
	ExcludeDirs    []string                        `yaml:"excludeDirs"`
	Languages      map[string]comment.SyntaxConfig `yaml:"languages"`
}

// OutputConfig holds where results are written.
type OutputConfig struct {
	Dir     string `yaml:"dir" validate:"required"`
	History string `yaml:"history"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug verbose info warn error silent"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "0.0.0",
		Input: InputConfig{
			Src:            []string{"."},
			IncludeFilters: []string{`.*\.(coffee|cs|dart|erl|go|java|js|php?|py|rb|ts|pm)$`},
			ExcludeDirs:    []string{"**/node_modules", "**/.git", "**/vendor"},
		},
		Output: OutputConfig{
			Dir: "doc",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Markdown: true,
	}
}

// Load loads configuration from a YAML or JSON file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.dir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads the first configuration file found in dir.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := DefaultConfig()
	cfg.dir = dir
	return cfg, nil
}

// Dir returns the directory relative paths in the configuration resolve
// against.
func (c *Config) Dir() string {
	if c.dir == "" {
		return "."
	}
	return c.dir
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
		_, err := semver.StrictNewVersion(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Metadata builds the project metadata. Header and footer files are read
// relative to the configuration directory and rendered with r when r is not
// nil.
func (c *Config) Metadata(r port.Renderer) (domain.ProjectMetadata, error) {
	meta := domain.ProjectMetadata{
		Name:        c.Name,
		Version:     c.Version,
		Description: c.Description,
		Title:       c.Title,
		URL:         c.URL,
		SampleURL:   c.SampleURL,
	}
	var err error
	if meta.Header, err = c.page(c.Header, r); err != nil {
		return meta, err
	}
	if meta.Footer, err = c.page(c.Footer, r); err != nil {
		return meta, err
	}
	return meta, nil
}

func (c *Config) page(p *PageConfig, r port.Renderer) (*domain.PageSection, error) {
	if p == nil {
		return nil, nil
	}
	path := p.Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir(), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ResourceError{Path: path, Err: err}
	}
	content := string(data)
	if r != nil {
		if content, err = r.Render(content); err != nil {
			return nil, fmt.Errorf("render %s: %w", path, err)
		}
	}
	return &domain.PageSection{Title: p.Title, Content: content}, nil
}

// HistoryPath returns the history database path, resolved against the
// configuration directory. Empty means history is disabled.
func (c *Config) HistoryPath() string {
	if c.Output.History == "" || filepath.IsAbs(c.Output.History) {
		return c.Output.History
	}
	return filepath.Join(c.Dir(), c.Output.History)
}
