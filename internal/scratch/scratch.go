// Package scratch manages the temporary directory owned by one run.
package scratch

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/flarebyte/shoggoth/internal/logging"
)

var log = logging.Log

// Prefix names scratch directories under the system temp dir.
const Prefix = "shoggoth-"

// Dir is an exclusively owned temporary directory.
type Dir struct {
	Path string
}

// New creates a uniquely named directory under parent (os.TempDir when empty).
func New(parent string) (*Dir, error) {
	p, err := os.MkdirTemp(parent, Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	log.Debug("created scratch dir %s", p)
	return &Dir{Path: p}, nil
}

// Remove deletes the directory and everything in it.
func (d *Dir) Remove() error {
	if err := os.RemoveAll(d.Path); err != nil {
		return fmt.Errorf("failed to remove scratch dir %s: %w", d.Path, err)
	}
	log.Debug("removed scratch dir %s", d.Path)
	return nil
}

// With creates a scratch directory, calls fn with it and removes it on every
// return path. A removal failure is combined with fn's error.
func With(parent string, fn func(d *Dir) error) (err error) {
	d, err := New(parent)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := d.Remove(); rmErr != nil {
			if err == nil {
				err = rmErr
				return
			}
			err = multierror.Append(err, rmErr)
		}
	}()
	return fn(d)
}
