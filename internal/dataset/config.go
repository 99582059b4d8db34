package dataset

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/parallel"
)

// Config describes a network stored in a directory using the standard file names.
type Config struct {
	Dir string `yaml:"dir"`

	// Neurons is the width of every layer; weight matrices are Neurons x Neurons
	// and inputs carry Neurons features.
	Neurons int `yaml:"neurons"`
	Layers  int `yaml:"layers"`

	// NumInputs is the number of input rows (and the length of the label vector).
	NumInputs int `yaml:"num_inputs"`

	ColBlockWidth int `yaml:"col_block_width"`
	// SlabCount defaults to ceil(Neurons/ColBlockWidth) when zero.
	SlabCount int `yaml:"slab_count"`
	// Pad is the number of filler words between columns and values. A
	// negative value selects the smallest pad that aligns the values.
	Pad int `yaml:"pad"`

	Kind dtype.DataType `yaml:"kind"`

	// VerifyWrites re-reads every written file and compares checksums.
	VerifyWrites bool `yaml:"verify_writes"`

	Parallel parallel.Config `yaml:"parallel"`
}

// DefaultConfig returns the geometry of the 1024-neuron, 120-layer network
// with 60000 inputs.
func DefaultConfig() Config {
	return Config{
		Dir:           ".",
		Neurons:       1024,
		Layers:        120,
		NumInputs:     60000,
		ColBlockWidth: 256,
		Pad:           -1,
		Kind:          dtype.Float32,
		Parallel:      parallel.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config from fs. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	data, err := readFile(fs, path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Geometry returns the per-layer weight geometry.
func (c Config) Geometry() csr.Geometry {
	slabs := c.SlabCount
	if slabs == 0 && c.ColBlockWidth > 0 {
		slabs = (c.Neurons + c.ColBlockWidth - 1) / c.ColBlockWidth
	}
	return csr.Geometry{
		Rows:          c.Neurons,
		Cols:          c.Neurons,
		ColBlockWidth: c.ColBlockWidth,
		SlabCount:     slabs,
	}
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	if c.Layers <= 0 {
		return fmt.Errorf("layers must be positive, got %d", c.Layers)
	}
	if c.NumInputs < 0 {
		return fmt.Errorf("num_inputs must not be negative, got %d", c.NumInputs)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("unsupported value kind %d", int(c.Kind))
	}
	if err := c.Geometry().Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	return nil
}
