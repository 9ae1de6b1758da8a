package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. REGIONSTATS_TOP_N.
const EnvPrefix = "REGIONSTATS"

// ErrInvalid marks configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the run settings.
type Config struct {
	InputPath        string        `yaml:"input_path" split_words:"true" validate:"required"`
	OutputDir        string        `yaml:"output_dir" split_words:"true" validate:"required"`
	TopN             int           `yaml:"top_n" split_words:"true" validate:"gt=0"`
	CompareRegions   []string      `yaml:"compare_regions" split_words:"true" validate:"dive,len=2,alpha"`
	ReferenceRegion  string        `yaml:"reference_region" split_words:"true" validate:"len=2,alpha"`
	HeadlineCategory string        `yaml:"headline_category" split_words:"true" validate:"required"`
	Delimiter        string        `yaml:"delimiter" validate:"len=1"`
	Workbook         bool          `yaml:"workbook"`
	MetricsFile      string        `yaml:"metrics_file" split_words:"true"`
	Logging          LoggingConfig `yaml:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		OutputDir:        ".",
		TopN:             10,
		ReferenceRegion:  "DF",
		HeadlineCategory: "CD",
		Delimiter:        ",",
		Workbook:         true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load starts from Default, applies the YAML file at path (if path is not
// empty) and then environment overrides. The result is not validated so
// that command-line flags can still be layered on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Validate normalises region and category codes and checks every field.
// All failures are reported together.
func (c *Config) Validate() error {
	c.normalize()

	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// DelimiterRune returns the field separator for delimited input.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

func (c *Config) normalize() {
	c.ReferenceRegion = normalizeCode(c.ReferenceRegion)
	c.HeadlineCategory = normalizeCode(c.HeadlineCategory)

	var regions []string
	for _, region := range c.CompareRegions {
		if region = normalizeCode(region); region != "" {
			regions = append(regions, region)
		}
	}
	c.CompareRegions = regions

	switch strings.ToLower(c.Delimiter) {
	case `\t`, "tab":
		c.Delimiter = "\t"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters, got %q", field, fe.Param(), fe.Value())
	case "alpha":
		return fmt.Sprintf("%s must contain letters only, got %q", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
