package format

import (
	"path/filepath"
	"strconv"
)

// File suffixes.
const (
	TextExt   = ".tsv"
	BinaryExt = ".b"
)

// WeightStem returns the stem of a weight layer file, n<cols>-l<layer>.
// Layers are numbered from 1.
func WeightStem(cols, layer int) string {
	return "n" + strconv.Itoa(cols) + "-l" + strconv.Itoa(layer)
}

// InputStem returns the stem of the dense input file, sparse-images-<cols>.
func InputStem(cols int) string {
	return "sparse-images-" + strconv.Itoa(cols)
}

// LabelStem returns the stem of the label file, neuron<features>-l<layers>-categories.
func LabelStem(features, layers int) string {
	return "neuron" + strconv.Itoa(features) + "-l" + strconv.Itoa(layers) + "-categories"
}

// WeightPaths returns the text and binary paths of a weight layer inside dir.
func WeightPaths(dir string, cols, layer int) (text, binary string) {
	return paths(dir, WeightStem(cols, layer))
}

// InputPaths returns the text and binary paths of the dense input file inside dir.
func InputPaths(dir string, cols int) (text, binary string) {
	return paths(dir, InputStem(cols))
}

// LabelPaths returns the text and binary paths of the label file inside dir.
func LabelPaths(dir string, features, layers int) (text, binary string) {
	return paths(dir, LabelStem(features, layers))
}

func paths(dir, stem string) (string, string) {
	base := filepath.Join(dir, stem)
	return base + TextExt, base + BinaryExt
}
