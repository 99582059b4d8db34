// Package loader converts sparse network datasets between their text and
// binary forms and loads them into memory for an inference engine.
//
// This package wraps the internal implementation and exports a clean public API.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/sparsednn/loader"
//	    "github.com/spf13/afero"
//	)
//
//	fs := afero.NewOsFs()
//	cfg, err := loader.LoadConfig(fs, "network.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := loader.NewConverter(cfg, fs, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load all weight layers into one arena
//	weights, err := c.LoadWeightsBinary(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	layer, err := loader.Layer[float32](weights, 0)
//
//	// Dense inputs and expected categories
//	inputs, err := loader.LoadInputsBinary[float32](ctx, c)
//	categories, err := c.LoadLabelsBinary(ctx)
package loader

import (
	"context"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/born-ml/sparsednn/internal/arena"
	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dataset"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/features"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/labels"
)

// DataType is the element type of weight and input values.
type DataType = dtype.DataType

// Supported value types.
const (
	Float32 DataType = dtype.Float32
	Float64 DataType = dtype.Float64
)

// Error classes, matched with errors.Is.
var (
	ErrFormat     = format.ErrFormat
	ErrBounds     = format.ErrBounds
	ErrFileAccess = format.ErrFileAccess
)

// Config describes a network directory and the weight geometry.
type Config = dataset.Config

// Geometry is the shape of one weight layer.
type Geometry = csr.Geometry

// Converter converts and loads the files of one network directory.
type Converter = dataset.Converter

// Arena holds every weight layer of a network in one buffer.
type Arena = arena.Arena

// Layout is the per-layer slot layout of an Arena.
type Layout = arena.Layout

// Labels is a one-hot category vector.
type Labels = labels.Vector

// Inputs is a dense input matrix with row activity metadata.
type Inputs[T dtype.Float] = features.Matrix[T]

// LayerView is a zero-copy view of one layer inside an Arena.
type LayerView[T dtype.Float] = arena.LayerView[T]

// DefaultConfig returns the configuration of the 1024-neuron, 120-layer network.
func DefaultConfig() Config { return dataset.DefaultConfig() }

// LoadConfig reads a YAML configuration from fs.
func LoadConfig(fs afero.Fs, path string) (Config, error) { return dataset.LoadConfig(fs, path) }

// NewConverter returns a Converter for cfg. logger and reg may be nil.
func NewConverter(cfg Config, fs afero.Fs, logger log.Logger, reg prometheus.Registerer) (*Converter, error) {
	return dataset.New(cfg, fs, logger, reg)
}

// LoadInputs parses the text input matrix.
func LoadInputs[T dtype.Float](ctx context.Context, c *Converter) (*Inputs[T], error) {
	return dataset.LoadInputs[T](ctx, c)
}

// LoadInputsBinary decodes the binary input matrix.
func LoadInputsBinary[T dtype.Float](ctx context.Context, c *Converter) (*Inputs[T], error) {
	return dataset.LoadInputsBinary[T](ctx, c)
}

// Layer returns a view of layer i of a.
func Layer[T dtype.Float](a *Arena, i int) (*LayerView[T], error) {
	return arena.Layer[T](a, i)
}

// ReadFileToString returns the whole content of path.
func ReadFileToString(fs afero.Fs, path string) (string, error) {
	return dataset.ReadFileToString(fs, path)
}

// WriteFileFromString replaces the content of path with exactly s.
func WriteFileFromString(fs afero.Fs, path, s string) error {
	return dataset.WriteFileFromString(fs, path, s)
}
