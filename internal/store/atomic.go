package store

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// writeFileAtomic writes data to path+".tmp", syncs it, and renames it over
// path. On Windows a rename onto an existing file can fail, so the target is
// removed and the rename retried once.
func writeFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return err
	}

	if err := fs.Rename(tmp, path); err != nil {
		if _, statErr := fs.Stat(path); statErr == nil {
			if removeErr := fs.Remove(path); removeErr != nil {
				_ = fs.Remove(tmp)
				return removeErr
			}
			if retryErr := fs.Rename(tmp, path); retryErr != nil {
				_ = fs.Remove(tmp)
				return retryErr
			}
			return nil
		}
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}
