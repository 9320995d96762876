package envelope

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/contract/internal/contract"
)

// SaveFile writes m to path. The parent directory must already exist.
// The file is written to a temporary name and renamed into place, so a
// failed save never leaves a partial envelope at path.
func SaveFile(path string, m *contract.Model, opts ...Option) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return &FileError{Path: dir, Reason: "not a valid directory", Err: err}
	}
	if !info.IsDir() {
		return &FileError{Path: dir, Reason: "not a valid directory"}
	}

	data, err := Save(m, opts...)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &FileError{Path: dir, Reason: "not writable", Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &FileError{Path: path, Reason: "write failed", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Path: path, Reason: "write failed", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &FileError{Path: path, Reason: "write failed", Err: err}
	}
	return nil
}

// LoadFile reads the envelope at path. The path must name a regular file.
func LoadFile(path string, opts ...Option) (*contract.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FileError{Path: path, Reason: "not a valid file", Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &FileError{Path: path, Reason: "not a valid file"}
	}

	//nolint:gosec // G304: path comes from the caller, which is expected for model loading
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, &FileError{Path: path, Reason: "not readable", Err: err}
		}
		return nil, &FileError{Path: path, Reason: "read failed", Err: err}
	}

	m, err := Load(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}
