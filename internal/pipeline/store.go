package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/spf13/afero"
)

const partialSuffix = ".part"

// FileStore keeps scans under dir/{year}/{doy}/{hour}/, mirroring the bucket layout.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(fsys afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fsys, dir: dir}
}

// HourDir returns the directory holding the scan for hour.
func (s *FileStore) HourDir(hour time.Time) string {
	hour = hour.UTC()
	return filepath.Join(s.dir,
		fmt.Sprintf("%d", hour.Year()),
		fmt.Sprintf("%03d", domain.DayOfYear(hour)),
		fmt.Sprintf("%02d", hour.Hour()))
}

// Has reports whether a complete scan is stored for hour.
func (s *FileStore) Has(hour time.Time) (bool, error) {
	entries, err := afero.ReadDir(s.fs, s.HourDir(hour))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("list %s: %w", s.HourDir(hour), err)
	}
	for _, e := range entries {
		if !e.IsDir() && !strings.HasSuffix(e.Name(), partialSuffix) {
			return true, nil
		}
	}
	return false, nil
}

// Save writes data under the key's file name. The file only appears under its
// final name once fully written.
func (s *FileStore) Save(hour time.Time, key string, data []byte) error {
	dir := s.HourDir(hour)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	final := filepath.Join(dir, path.Base(key))
	tmp := final + partialSuffix
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, final); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
