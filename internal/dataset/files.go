package dataset

import (
	"os"

	"github.com/google/renameio/v2"
	"github.com/spf13/afero"

	"github.com/born-ml/sparsednn/internal/format"
)

const filePerm os.FileMode = 0o644

// ReadFileToString returns the whole content of path.
func ReadFileToString(fs afero.Fs, path string) (string, error) {
	data, err := readFile(fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFileFromString replaces the content of path with exactly s.
// Whatever path held before, longer or shorter, is gone afterwards.
func WriteFileFromString(fs afero.Fs, path, s string) error {
	return writeFile(fs, path, []byte(s))
}

func readFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &format.FileAccessError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// writeFile truncates and writes path. On the real filesystem the write goes
// through a temporary file and a rename so readers never see a partial file.
func writeFile(fs afero.Fs, path string, data []byte) error {
	var err error
	if _, ok := fs.(*afero.OsFs); ok {
		err = renameio.WriteFile(path, data, filePerm)
	} else {
		err = afero.WriteFile(fs, path, data, filePerm)
	}
	if err != nil {
		return &format.FileAccessError{Op: "write", Path: path, Err: err}
	}
	return nil
}
