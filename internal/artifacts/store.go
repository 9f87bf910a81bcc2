package artifacts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	errx "github.com/ia-assistant/server/internal/core/error"
	"github.com/ia-assistant/server/internal/pipeline/model"
)

const (
	filenameTimeLayout = "20060102_150405"
	maxNameAttempts    = 100
)

// Artifact locates a stored document.
type Artifact struct {
	Path     string
	Filename string
}

// Store writes artifacts into one directory as <prefix>_<timestamp>.<ext>.
type Store struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewStore creates the artifact directory if needed.
func NewStore(cfg model.ArtifactConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("artifact dir is empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "respuesta"
	}
	return &Store{dir: cfg.Dir, prefix: prefix, now: time.Now}, nil
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string { return s.dir }

// Save creates a new artifact with the given extension and fills it with
// write. Names are second-resolution timestamps; when a name is taken a
// numeric suffix is appended instead of overwriting the existing file.
func (s *Store) Save(ext string, write func(io.Writer) error) (Artifact, error) {
	f, art, err := s.create(ext)
	if err != nil {
		return Artifact{}, err
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(art.Path)
		return Artifact{}, err
	}
	if err := f.Close(); err != nil {
		os.Remove(art.Path)
		return Artifact{}, fmt.Errorf("close artifact: %w", err)
	}
	return art, nil
}

func (s *Store) create(ext string) (*os.File, Artifact, error) {
	base := fmt.Sprintf("%s_%s", s.prefix, s.now().Format(filenameTimeLayout))
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := base + "." + ext
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d.%s", base, attempt, ext)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, Artifact{}, fmt.Errorf("create artifact: %w", err)
		}
		return f, Artifact{Path: path, Filename: name}, nil
	}
	return nil, Artifact{}, fmt.Errorf("create artifact: no free name for %s", base)
}

// Exists reports whether path names an existing regular file.
func (s *Store) Exists(path string) bool {
	return fileExists(path)
}

// Read loads the artifact at path, as returned by Save.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errx.WrapNotFound(err, errx.ArtifactNotFoundMessage)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Open returns a stored artifact by its base name for download.
func (s *Store) Open(filename string) (*os.File, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return nil, errx.WrapNotFound(fmt.Errorf("invalid artifact name %q", filename), errx.ArtifactNotFoundMessage)
	}

	f, err := os.Open(filepath.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errx.WrapNotFound(err, errx.ArtifactNotFoundMessage)
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
