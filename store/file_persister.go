package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilePersister persists a document to its destination. It abstracts away
// the where and how of writing the recipes file.
type FilePersister interface {
	Persist(path string, data io.Reader) error
}

// LocalFilePersister writes documents to the local disk.
//
// The write is atomic from the reader's perspective: the data goes to a
// temporary file in the destination directory which is then renamed over the
// target, so a crash mid-write leaves the previous document intact.
type LocalFilePersister struct{}

// Persist writes the contents of data to path.
func (l *LocalFilePersister) Persist(path string, data io.Reader) (err error) {
	cp := filepath.Clean(path)

	dir := filepath.Dir(cp)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating a local directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(cp)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating a temporary file in %q: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing the temporary file %q: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing the temporary file %q: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), cp); err != nil {
		return fmt.Errorf("replacing %q: %w", cp, err)
	}

	return nil
}
