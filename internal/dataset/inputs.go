package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"

	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/features"
	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/labels"
)

func (c *Converter) inputPaths() (string, string) {
	return format.InputPaths(c.cfg.Dir, c.cfg.Neurons)
}

func (c *Converter) labelPaths() (string, string) {
	return format.LabelPaths(c.cfg.Dir, c.cfg.Neurons, c.cfg.Layers)
}

func (c *Converter) checkKind(want dtype.DataType) error {
	if want != c.cfg.Kind {
		return fmt.Errorf("value kind %s requested, dataset is configured for %s", want, c.cfg.Kind)
	}
	return nil
}

// ConvertInputs converts the text input matrix to its binary file.
func (c *Converter) ConvertInputs(ctx context.Context) (err error) {
	defer func(start time.Time) { c.observe("convert_inputs", start, err) }(time.Now())

	if err := ctx.Err(); err != nil {
		return err
	}
	switch c.cfg.Kind {
	case dtype.Float64:
		return convertInputs[float64](c)
	default:
		return convertInputs[float32](c)
	}
}

func convertInputs[T dtype.Float](c *Converter) error {
	m, err := parseInputs[T](c)
	if err != nil {
		return err
	}
	data, err := features.Encode(m)
	if err != nil {
		return err
	}
	_, path := c.inputPaths()
	if err := c.write("inputs", path, data); err != nil {
		return err
	}
	level.Info(c.logger).Log("msg", "converted inputs", "rows", m.Inputs, "active_rows", len(m.ActiveRows), "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func parseInputs[T dtype.Float](c *Converter) (*features.Matrix[T], error) {
	path, _ := c.inputPaths()
	text, err := readFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	m, err := features.Parse[T](text, c.cfg.NumInputs, c.cfg.Neurons, c.cfg.Parallel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadInputs parses the text input matrix. T must match the configured kind.
func LoadInputs[T dtype.Float](ctx context.Context, c *Converter) (m *features.Matrix[T], err error) {
	defer func(start time.Time) { c.observe("load_inputs", start, err) }(time.Now())

	if err := c.checkKind(dtype.Of[T]()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parseInputs[T](c)
}

// LoadInputsBinary decodes the binary input matrix. T must match the
// configured kind.
func LoadInputsBinary[T dtype.Float](ctx context.Context, c *Converter) (m *features.Matrix[T], err error) {
	defer func(start time.Time) { c.observe("load_inputs_binary", start, err) }(time.Now())

	if err := c.checkKind(dtype.Of[T]()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, path := c.inputPaths()
	data, err := readFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	m, err = features.Decode[T](data, c.cfg.NumInputs, c.cfg.Neurons, c.cfg.Parallel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ConvertLabels converts the text category file to its binary file.
func (c *Converter) ConvertLabels(ctx context.Context) (err error) {
	defer func(start time.Time) { c.observe("convert_labels", start, err) }(time.Now())

	v, err := c.LoadLabels(ctx)
	if err != nil {
		return err
	}
	data := labels.Encode(v)
	_, path := c.labelPaths()
	if err := c.write("labels", path, data); err != nil {
		return err
	}
	level.Info(c.logger).Log("msg", "converted labels", "inputs", len(v), "positives", len(v.Indices()))
	return nil
}

// LoadLabels parses the text category file.
func (c *Converter) LoadLabels(ctx context.Context) (labels.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, _ := c.labelPaths()
	text, err := readFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	v, err := labels.Parse(text, c.cfg.NumInputs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadLabelsBinary decodes the binary category file. Its length must equal
// the configured number of inputs.
func (c *Converter) LoadLabelsBinary(ctx context.Context) (labels.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, path := c.labelPaths()
	data, err := readFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	v, err := labels.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(v) != c.cfg.NumInputs {
		return nil, fmt.Errorf("%s: %w", path, &format.FormatError{Field: "rows", Text: fmt.Sprint(len(v)), Reason: fmt.Sprintf("want %d labels", c.cfg.NumInputs)})
	}
	return v, nil
}
