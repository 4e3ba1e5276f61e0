package store

import (
	"os"
	"path/filepath"
)

// SaveFile saves the store to the file at path.
// The data is written to a temporary file in the same directory which then
// replaces path, so a failed save never leaves a partially written file.
// All file errors are returned as RetCIOError.
func SaveFile(s IStore, path string) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return WrapError(RetCIOError, "unable to create temporary file", err)
	}
	tmpName := tmp.Name()

	// cleanup on every error path
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = s.Save(tmp); err != nil {
		return err
	}

	if err = tmp.Chmod(0o644); err != nil {
		return WrapError(RetCIOError, "unable to set file mode", err)
	}

	if err = tmp.Sync(); err != nil {
		return WrapError(RetCIOError, "unable to sync file", err)
	}

	if err = tmp.Close(); err != nil {
		return WrapError(RetCIOError, "unable to close file", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return WrapError(RetCIOError, "unable to replace "+path, err)
	}

	Logger.Debugf("saved store to %s", path)
	return nil
}

// LoadFile replaces the contents of the store with the records in the file at path.
// A missing or unreadable file is returned as RetCIOError (the cause is wrapped,
// so errors.Is(err, fs.ErrNotExist) can be used to detect a missing file).
func LoadFile(s IStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapError(RetCIOError, "unable to open "+path, err)
	}
	defer f.Close()

	if err := s.Load(f); err != nil {
		return err
	}

	Logger.Debugf("loaded store from %s", path)
	return nil
}
