package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"contractqa/internal/domain"
)

// Loader reads a single plain-text document whose path matches a glob.
type Loader struct {
	pattern string
}

// NewLoader returns a loader that accepts paths matching pattern.
// An empty pattern accepts every path.
func NewLoader(pattern string) *Loader {
	return &Loader{pattern: pattern}
}

// Load reads the whole file into memory.
func (l *Loader) Load(path string) (domain.Document, error) {
	if !l.accepts(path) {
		return domain.Document{}, fmt.Errorf("%w: %s does not match %q", domain.ErrConfiguration, path, l.pattern)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return domain.Document{}, fmt.Errorf("document path is a directory: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	if !utf8.Valid(data) {
		return domain.Document{}, fmt.Errorf("document is not valid UTF-8 text: %s", path)
	}

	return domain.Document{
		ID:       documentID(path),
		Path:     path,
		Content:  string(data),
		LoadedAt: time.Now(),
	}, nil
}

func (l *Loader) accepts(path string) bool {
	if l.pattern == "" {
		return true
	}
	slashed := filepath.ToSlash(path)
	for _, candidate := range []string{slashed, filepath.ToSlash(filepath.Base(path))} {
		matched, err := doublestar.Match(l.pattern, candidate)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func documentID(path string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return hex.EncodeToString(hash[:8])
}
