package vox

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ReadFile decodes the .vox file at path.
func ReadFile(path string) (m *Model, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	m, err = Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return m, nil
}

// WriteFile encodes m into a new file at path.
func WriteFile(path string, m *Model) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return errors.Wrapf(Encode(f, m), "encoding %s", path)
}
