package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// FileName is the default config file name.
const FileName = "caselex.toml"

// DefaultAPIKeyEnv is read when embedding.api_key_env is not set.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Duration accepts "90s" style strings in both TOML and YAML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the on-disk layout.
type Config struct {
	Chunking struct {
		MaxSize int `toml:"max_size" yaml:"max_size"`
		Overlap int `toml:"overlap" yaml:"overlap"`
	} `toml:"chunking" yaml:"chunking"`

	Embedding struct {
		Provider          string   `toml:"provider" yaml:"provider"`
		Model             string   `toml:"model" yaml:"model"`
		BaseURL           string   `toml:"base_url" yaml:"base_url"`
		APIKeyEnv         string   `toml:"api_key_env" yaml:"api_key_env"`
		Dimensions        int      `toml:"dimensions" yaml:"dimensions"`
		BatchSize         int      `toml:"batch_size" yaml:"batch_size"`
		RequestsPerSecond float64  `toml:"requests_per_second" yaml:"requests_per_second"`
		Timeout           Duration `toml:"timeout" yaml:"timeout"`
	} `toml:"embedding" yaml:"embedding"`

	Index struct {
		Path string `toml:"path" yaml:"path"`
	} `toml:"index" yaml:"index"`

	Retrieval struct {
		TopK                int `toml:"top_k" yaml:"top_k"`
		ProximityWindow     int `toml:"proximity_window" yaml:"proximity_window"`
		CandidateMultiplier int `toml:"candidate_multiplier" yaml:"candidate_multiplier"`
	} `toml:"retrieval" yaml:"retrieval"`

	Ingest struct {
		Concurrency       int      `toml:"concurrency" yaml:"concurrency"`
		DocumentTimeout   Duration `toml:"document_timeout" yaml:"document_timeout"`
		RequireCaseNumber bool     `toml:"require_case_number" yaml:"require_case_number"`
		Extensions        []string `toml:"extensions" yaml:"extensions"`
	} `toml:"ingest" yaml:"ingest"`
}

// DefaultConfig mirrors domain.DefaultSettings in file form.
func DefaultConfig() Config {
	d := domain.DefaultSettings()
	var c Config
	c.Chunking.MaxSize = d.Chunking.MaxSize
	c.Chunking.Overlap = d.Chunking.Overlap
	c.Embedding.Provider = string(d.Embedding.Provider)
	c.Embedding.Model = d.Embedding.Model
	c.Embedding.BaseURL = d.Embedding.BaseURL
	c.Embedding.APIKeyEnv = DefaultAPIKeyEnv
	c.Embedding.Dimensions = d.Embedding.Dimensions
	c.Embedding.BatchSize = d.Embedding.BatchSize
	c.Embedding.RequestsPerSecond = d.Embedding.RequestsPerSecond
	c.Embedding.Timeout = Duration(d.Embedding.Timeout)
	c.Index.Path = d.Index.Path
	c.Retrieval.TopK = d.Retrieval.TopK
	c.Retrieval.ProximityWindow = d.Retrieval.ProximityWindow
	c.Retrieval.CandidateMultiplier = d.Retrieval.CandidateMultiplier
	c.Ingest.Concurrency = d.Ingest.Concurrency
	c.Ingest.DocumentTimeout = Duration(d.Ingest.DocumentTimeout)
	c.Ingest.RequireCaseNumber = d.Ingest.RequireCaseNumber
	c.Ingest.Extensions = d.Ingest.Extensions
	return c
}

// Settings converts the file form, resolving the API key from the
// environment.
func (c Config) Settings() domain.Settings {
	return domain.Settings{
		Chunking: domain.ChunkingSettings{MaxSize: c.Chunking.MaxSize, Overlap: c.Chunking.Overlap},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(strings.ToLower(c.Embedding.Provider)),
			Model:             c.Embedding.Model,
			BaseURL:           c.Embedding.BaseURL,
			APIKey:            os.Getenv(c.Embedding.APIKeyEnv),
			Dimensions:        c.Embedding.Dimensions,
			BatchSize:         c.Embedding.BatchSize,
			RequestsPerSecond: c.Embedding.RequestsPerSecond,
			Timeout:           time.Duration(c.Embedding.Timeout),
		},
		Index: domain.IndexSettings{Path: expandHome(c.Index.Path)},
		Retrieval: domain.RetrievalSettings{
			TopK:                c.Retrieval.TopK,
			ProximityWindow:     c.Retrieval.ProximityWindow,
			CandidateMultiplier: c.Retrieval.CandidateMultiplier,
		},
		Ingest: domain.IngestSettings{
			Concurrency:       c.Ingest.Concurrency,
			DocumentTimeout:   time.Duration(c.Ingest.DocumentTimeout),
			RequireCaseNumber: c.Ingest.RequireCaseNumber,
			Extensions:        c.Ingest.Extensions,
		},
	}
}

// DefaultPath returns ~/.caselex/caselex.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".caselex", FileName), nil
}

// Load reads and validates the config at path. Values absent from the file
// keep their defaults and a missing file yields the defaults. Any parse or
// validation failure wraps domain.ErrInvalidConfig.
func Load(path string) (*domain.Settings, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file yet - defaults
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, path, err)
		}
	}

	settings := cfg.Settings()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &settings, nil
}

// Write saves cfg with restricted permissions, as YAML for .yaml/.yml
// paths and TOML otherwise.
func Write(path string, cfg Config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func decode(path string, data []byte, cfg *Config) error {
	// Unknown keys are rejected so that a misspelt setting is not silently
	// replaced by its default.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml", "":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// loadDotEnv sets variables from path without overriding the environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: loading %s: %w", domain.ErrInvalidConfig, path, err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
