// Package config defines the YAML configuration of the tempwalk binary.
//
// Environment variables are expanded before parsing, so values like
// "${TEMPWALK_TOKEN}" can be injected at deploy time. Unknown keys are an error.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/tempwalk/pkg/persistence"
	"github.com/sanonone/tempwalk/pkg/walk"
)

// Config is the top-level structure of the configuration file.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Walker  WalkerConfig  `yaml:"walker"`
	Server  ServerConfig  `yaml:"server"`
	Record  RecordConfig  `yaml:"record"`
}

// DatasetConfig locates the edge table.
type DatasetConfig struct {
	Path string `yaml:"path"`
	// TrainRatio, when > 0, keeps only the training split of the days.
	TrainRatio float64 `yaml:"train_ratio"`
}

// WalkerConfig mirrors walk.Config with the switches of the file format.
type WalkerConfig struct {
	NNodes         int         `yaml:"n_nodes"` // 0 = max node id + 1
	TEnd           float64     `yaml:"t_end"`
	Scale          float64     `yaml:"scale"`
	RWLen          int         `yaml:"rw_len"`
	BatchSize      int         `yaml:"batch_size"`
	StartWeighting walk.Policy `yaml:"start_weighting"` // "uniform", "linear", "exp"
	AllowTeleport  bool        `yaml:"allow_teleport"`
	AllowJump      bool        `yaml:"allow_jump"`
	Seed           uint64      `yaml:"seed"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	HTTPAddr  string `yaml:"http_addr"`
	AuthToken string `yaml:"auth_token"`
}

// RecordConfig configures batch recordings.
type RecordConfig struct {
	Path      string                `yaml:"path"`
	Precision persistence.Precision `yaml:"precision"` // "float32", "float16"
}

// DefaultConfig returns a configuration usable without a file.
func DefaultConfig() Config {
	d := walk.DefaultConfig()
	return Config{
		Walker: WalkerConfig{
			TEnd:           d.TEnd,
			Scale:          d.Scale,
			RWLen:          d.RWLen,
			BatchSize:      d.BatchSize,
			StartWeighting: d.Policy,
		},
		Server: ServerConfig{
			HTTPAddr: ":9093",
		},
		Record: RecordConfig{
			Path:      "walks.rec",
			Precision: persistence.Float32,
		},
	}
}

// Load reads the file at path on top of DefaultConfig.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}
	if err := Parse(os.ExpandEnv(string(data)), &cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown fields.
func Parse(data string, cfg *Config) error {
	decoder := yaml.NewDecoder(strings.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// WalkConfig converts the walker section into a walk.Config.
// maxNode is used when n_nodes is 0.
func (c Config) WalkConfig(maxNode int) walk.Config {
	w := c.Walker
	nNodes := w.NNodes
	if nNodes == 0 {
		nNodes = maxNode + 1
	}
	return walk.Config{
		NNodes:    nNodes,
		TEnd:      w.TEnd,
		Scale:     w.Scale,
		RWLen:     w.RWLen,
		BatchSize: w.BatchSize,
		Policy:    w.StartWeighting,
		Mode:      walk.ModeFromFlags(w.AllowTeleport, w.AllowJump),
		Seed:      w.Seed,
	}
}
