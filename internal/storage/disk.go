package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores attachments as files in a single flat directory.
type Disk struct {
	root string
}

// NewDisk creates the upload directory if needed and returns a store over it.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Disk{root: root}, nil
}

func (d *Disk) Put(_ context.Context, originalName string, r io.Reader) (string, error) {
	name := NewName(originalName)

	f, err := os.OpenFile(filepath.Join(d.root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write attachment file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close attachment file: %w", err)
	}

	return name, nil
}

func (d *Disk) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (d *Disk) Delete(_ context.Context, name string) error {
	p, err := d.path(name)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove attachment file: %w", err)
	}
	return nil
}

func (d *Disk) Exists(_ context.Context, name string) (bool, error) {
	p, err := d.path(name)
	if err != nil {
		return false, nil
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat attachment file: %w", err)
	}
	return true, nil
}

// path rejects anything that could escape the flat directory. Storage names
// never contain separators, so a name that does is simply not one of ours.
func (d *Disk) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", fs.ErrNotExist
	}
	return filepath.Join(d.root, name), nil
}
