// Package dataset converts the text files of a network (weight layers, dense
// inputs, category labels) to their binary form and loads either form into
// memory: weights into one shared arena, inputs and labels into plain values.
//
// File names follow the fixed convention of package format; nothing here lists
// directories.
package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/born-ml/sparsednn/internal/arena"
	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/parallel"
	"github.com/born-ml/sparsednn/internal/serialization"
	"github.com/born-ml/sparsednn/internal/tsv"
)

// Converter runs file-level operations over one network directory.
type Converter struct {
	cfg     Config
	fs      afero.Fs
	logger  log.Logger
	metrics *metrics
}

// New returns a Converter. A nil logger discards logs, a nil registerer
// leaves metrics unregistered.
func New(cfg Config, fs afero.Fs, logger log.Logger, reg prometheus.Registerer) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Converter{
		cfg:     cfg,
		fs:      fs,
		logger:  log.With(logger, "component", "dataset", "dir", cfg.Dir),
		metrics: newMetrics(reg),
	}, nil
}

// Config returns the converter's configuration.
func (c *Converter) Config() Config { return c.cfg }

// Layout returns the arena layout for layers holding at most maxNNZ entries.
func (c *Converter) Layout(maxNNZ int) arena.Layout {
	g := c.cfg.Geometry()
	pad := c.cfg.Pad
	if pad < 0 {
		pad = arena.AlignedPad(g.Rows, g.SlabCount, maxNNZ, c.cfg.Kind)
	}
	return arena.Layout{Rows: g.Rows, Cols: g.Cols, SlabCount: g.SlabCount, MaxNNZ: maxNNZ, Pad: pad, Kind: c.cfg.Kind}
}

func (c *Converter) weightPaths(i int) (string, string) {
	return format.WeightPaths(c.cfg.Dir, c.cfg.Neurons, i+1)
}

func (c *Converter) observe(op string, start time.Time, err error) {
	c.metrics.operationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		level.Error(c.logger).Log("msg", "operation failed", "op", op, "err", err)
	}
}

// write stores data at path, counting it and optionally verifying it.
func (c *Converter) write(kind, path string, data []byte) error {
	if err := writeFile(c.fs, path, data); err != nil {
		return err
	}
	if c.cfg.VerifyWrites {
		if err := c.verify(path, serialization.Checksum(data)); err != nil {
			return err
		}
	}
	c.metrics.filesWritten.WithLabelValues(kind).Inc()
	c.metrics.bytesWritten.Add(float64(len(data)))
	return nil
}

// verify streams path back from disk and compares its digest with want.
func (c *Converter) verify(path string, want uint64) error {
	f, err := c.fs.Open(path)
	if err != nil {
		return &format.FileAccessError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	got, err := serialization.ChecksumReader(f)
	if err != nil {
		return &format.FileAccessError{Op: "read", Path: path, Err: err}
	}
	if err := serialization.ValidateChecksum(got, want); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// MaxNNZ returns the largest number of entries of any text weight layer,
// counting records the way the parser splits them.
func (c *Converter) MaxNNZ(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { c.observe("max_nnz", start, err) }(time.Now())

	counts := make([]int, c.cfg.Layers)
	err = parallel.ForEach(ctx, c.cfg.Layers, func(_ context.Context, i int) error {
		path, _ := c.weightPaths(i)
		text, err := readFile(c.fs, path)
		if err != nil {
			return err
		}
		counts[i] = tsv.CountRecords(text)
		return nil
	}, c.cfg.Parallel)
	if err != nil {
		return 0, err
	}
	return maxOf(counts), nil
}

// MaxNNZBinary returns the largest nnz declared by any binary weight layer.
// Only the headers are read.
func (c *Converter) MaxNNZBinary(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { c.observe("max_nnz_binary", start, err) }(time.Now())

	counts := make([]int, c.cfg.Layers)
	err = parallel.ForEach(ctx, c.cfg.Layers, func(_ context.Context, i int) error {
		_, path := c.weightPaths(i)
		hdr, err := c.readMatrixHeader(path)
		if err != nil {
			return err
		}
		counts[i] = hdr.NNZ
		return nil
	}, c.cfg.Parallel)
	if err != nil {
		return 0, err
	}
	return maxOf(counts), nil
}

func (c *Converter) readMatrixHeader(path string) (serialization.MatrixHeader, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return serialization.MatrixHeader{}, &format.FileAccessError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	hdr, err := serialization.ReadMatrixHeader(f)
	if err != nil {
		return serialization.MatrixHeader{}, fmt.Errorf("%s: %w", path, err)
	}
	return hdr, nil
}

// ConvertWeights converts every text weight layer to its binary file.
func (c *Converter) ConvertWeights(ctx context.Context) (err error) {
	defer func(start time.Time) { c.observe("convert_weights", start, err) }(time.Now())

	switch c.cfg.Kind {
	case dtype.Float64:
		return convertWeights[float64](ctx, c)
	default:
		return convertWeights[float32](ctx, c)
	}
}

func convertWeights[T dtype.Float](ctx context.Context, c *Converter) error {
	return parallel.ForEach(ctx, c.cfg.Layers, func(_ context.Context, i int) error {
		m, err := buildLayer[T](c, i)
		if err != nil {
			return err
		}
		data, err := serialization.EncodeMatrix(m)
		if err != nil {
			return err
		}
		_, path := c.weightPaths(i)
		if err := c.write("weights", path, data); err != nil {
			return err
		}
		level.Debug(c.logger).Log("msg", "converted layer", "layer", i+1, "nnz", m.NNZ, "size", humanize.Bytes(uint64(len(data))))
		return nil
	}, c.cfg.Parallel)
}

func buildLayer[T dtype.Float](c *Converter, i int) (*csr.Matrix[T], error) {
	path, _ := c.weightPaths(i)
	text, err := readFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	triples, err := tsv.Parse[T](text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := csr.Build(triples, c.cfg.Geometry(), len(triples))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadWeights parses every text weight layer and packs it into a new arena
// sized for the densest layer.
func (c *Converter) LoadWeights(ctx context.Context) (a *arena.Arena, err error) {
	defer func(start time.Time) { c.observe("load_weights", start, err) }(time.Now())

	maxNNZ, err := c.MaxNNZ(ctx)
	if err != nil {
		return nil, err
	}
	a, err = arena.New(c.Layout(maxNNZ), c.cfg.Layers)
	if err != nil {
		return nil, err
	}
	switch c.cfg.Kind {
	case dtype.Float64:
		err = packText[float64](ctx, c, a)
	default:
		err = packText[float32](ctx, c, a)
	}
	if err != nil {
		return nil, err
	}
	c.logArena(a, "text")
	return a, nil
}

func packText[T dtype.Float](ctx context.Context, c *Converter, a *arena.Arena) error {
	return arena.PackLayers(ctx, a, c.cfg.Layers, func(_ context.Context, i int) (*csr.Matrix[T], error) {
		m, err := buildLayer[T](c, i)
		if err != nil {
			return nil, err
		}
		c.metrics.layersPacked.WithLabelValues("text").Inc()
		return m, nil
	}, c.cfg.Parallel)
}

// LoadWeightsBinary copies every binary weight layer into a new arena sized
// for the densest layer. The builder is not involved.
func (c *Converter) LoadWeightsBinary(ctx context.Context) (a *arena.Arena, err error) {
	defer func(start time.Time) { c.observe("load_weights_binary", start, err) }(time.Now())

	maxNNZ, err := c.MaxNNZBinary(ctx)
	if err != nil {
		return nil, err
	}
	a, err = arena.New(c.Layout(maxNNZ), c.cfg.Layers)
	if err != nil {
		return nil, err
	}
	err = parallel.ForEach(ctx, c.cfg.Layers, func(_ context.Context, i int) error {
		_, path := c.weightPaths(i)
		data, err := readFile(c.fs, path)
		if err != nil {
			return err
		}
		if _, err := a.LoadLayer(i, data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		c.metrics.layersPacked.WithLabelValues("binary").Inc()
		return nil
	}, c.cfg.Parallel)
	if err != nil {
		return nil, err
	}
	c.logArena(a, "binary")
	return a, nil
}

func (c *Converter) logArena(a *arena.Arena, source string) {
	l := a.Layout()
	level.Info(c.logger).Log(
		"msg", "weights loaded",
		"source", source,
		"layers", a.Layers(),
		"max_nnz", l.MaxNNZ,
		"stride_words", a.Stride(),
		"size", humanize.Bytes(uint64(len(a.Bytes()))),
	)
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}
