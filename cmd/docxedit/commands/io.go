package commands

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

const (
	FormatJSON     = "json"
	FormatLegacy   = "legacy"
	FormatEnvelope = "envelope"

	stdioPath = "-"
)

// files reads inputs and writes outputs either through the file system or,
// for an empty path or "-", through the standard streams.
type files struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
}

func (f files) read(path string) ([]byte, error) {
	if path == "" || path == stdioPath {
		data, err := io.ReadAll(f.stdin)
		if err != nil {
			return nil, fmt.Errorf("couldn't read standard input: %w", err)
		}

		return data, nil
	}

	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %q: %w", path, err)
	}

	return data, nil
}

// write stores data at path only after it was produced completely, so a
// failed conversion never truncates an existing file.
func (f files) write(path string, data []byte) error {
	if path == "" || path == stdioPath {
		_, err := io.Copy(f.stdout, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("couldn't write standard output: %w", err)
		}

		return nil
	}

	err := afero.WriteFile(f.fs, path, data, 0644)
	if err != nil {
		return fmt.Errorf("couldn't write %q: %w", path, err)
	}

	return nil
}

func checkFormat(format string) error {
	switch format {
	case FormatJSON, FormatLegacy, FormatEnvelope:
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected %s, %s or %s)", format, FormatJSON, FormatLegacy, FormatEnvelope)
	}
}
