// Package credentials reads the access key pair used for object store listing.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// ErrMalformed is returned when the credentials file does not hold two KEY=VALUE lines.
var ErrMalformed = errors.New("malformed credentials file")

// Credentials is an access key id and its secret.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads the file at path and returns the value half of its first two
// KEY=VALUE lines as (access key id, secret key). The key names are not checked.
func Load(fs afero.Fs, path string) (Credentials, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\n")
	if len(lines) < 2 {
		return Credentials{}, fmt.Errorf("%w: %s: want 2 lines, got %d", ErrMalformed, path, len(lines))
	}

	values := make([]string, 2)
	for i := range values {
		line := strings.TrimRight(lines[i], "\r")
		parts := strings.Split(line, "=")
		if len(parts) < 2 {
			return Credentials{}, fmt.Errorf("%w: %s line %d has no '='", ErrMalformed, path, i+1)
		}
		values[i] = parts[1]
	}

	return Credentials{AccessKeyID: values[0], SecretAccessKey: values[1]}, nil
}

// Loader binds a filesystem and path so callers can reload credentials per request.
type Loader struct {
	fs   afero.Fs
	path string
}

// NewLoader creates a Loader reading path from fs.
func NewLoader(fs afero.Fs, path string) *Loader {
	return &Loader{fs: fs, path: path}
}

// Load reads the configured file.
func (l *Loader) Load() (Credentials, error) {
	return Load(l.fs, l.path)
}
