// Package config loads application settings from an optional YAML file and
// TENDERTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Company    CompanyConfig    `yaml:"company"`
	EMD        EMDConfig        `yaml:"emd"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Import     ImportConfig     `yaml:"import"`
	Listing    ListingConfig    `yaml:"listing"`
}

// CompanyConfig is printed on exported offer documents.
type CompanyConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Email   string `yaml:"email"`
}

// EMDConfig holds the earnest money deposit percentages.
type EMDConfig struct {
	DefaultPercent float64 `yaml:"default_percent"`
	MaxPercent     float64 `yaml:"max_percent"`
}

// ExtractionConfig points at the document field extraction service.
// An empty BaseURL disables document upload on the EMD step.
type ExtractionConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// ImportConfig bounds bulk uploads.
type ImportConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// ListingConfig bounds list pagination.
type ListingConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Defaults returns a Config populated with sensible defaults.
func Defaults() *Config {
	return &Config{
		Company: CompanyConfig{
			Name:    "Tender Desk",
			Address: "Mumbai, Maharashtra",
			Email:   "tenders@example.com",
		},
		EMD: EMDConfig{
			DefaultPercent: 2,
			MaxPercent:     5,
		},
		Extraction: ExtractionConfig{
			Timeout:        30 * time.Second,
			MaxUploadBytes: 10 << 20,
		},
		Import: ImportConfig{
			MaxUploadBytes: 10 << 20,
		},
		Listing: ListingConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []string

	if !(c.EMD.DefaultPercent >= 0 && c.EMD.DefaultPercent <= 100) {
		errs = append(errs, "emd.default_percent must be between 0 and 100")
	}
	if c.EMD.MaxPercent < c.EMD.DefaultPercent {
		errs = append(errs, "emd.max_percent must not be below emd.default_percent")
	}
	if c.Extraction.BaseURL != "" && c.Extraction.Timeout <= 0 {
		errs = append(errs, "extraction.timeout must be positive")
	}
	if c.Extraction.MaxUploadBytes <= 0 {
		errs = append(errs, "extraction.max_upload_bytes must be positive")
	}
	if c.Import.MaxUploadBytes <= 0 {
		errs = append(errs, "import.max_upload_bytes must be positive")
	}
	if c.Listing.DefaultPageSize <= 0 {
		errs = append(errs, "listing.default_page_size must be positive")
	}
	if c.Listing.MaxPageSize < c.Listing.DefaultPageSize {
		errs = append(errs, "listing.max_page_size must not be below listing.default_page_size")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// ExtractionEnabled reports whether a document extraction service is configured.
func (c *Config) ExtractionEnabled() bool {
	return c.Extraction.BaseURL != ""
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TENDERTRACK_COMPANY_NAME"); v != "" {
		cfg.Company.Name = v
	}
	if v := os.Getenv("TENDERTRACK_COMPANY_ADDRESS"); v != "" {
		cfg.Company.Address = v
	}
	if v := os.Getenv("TENDERTRACK_COMPANY_EMAIL"); v != "" {
		cfg.Company.Email = v
	}
	if v := os.Getenv("TENDERTRACK_EMD_DEFAULT_PERCENT"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: TENDERTRACK_EMD_DEFAULT_PERCENT: %w", err)
		}
		cfg.EMD.DefaultPercent = pct
	}
	if v := os.Getenv("TENDERTRACK_EXTRACTION_BASE_URL"); v != "" {
		cfg.Extraction.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("TENDERTRACK_EXTRACTION_API_KEY"); v != "" {
		cfg.Extraction.APIKey = v
	}
	if v := os.Getenv("TENDERTRACK_EXTRACTION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TENDERTRACK_EXTRACTION_TIMEOUT: %w", err)
		}
		cfg.Extraction.Timeout = d
	}
	return nil
}
