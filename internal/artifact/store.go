package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrMissingBaseline indicates that no accepted baseline exists for a slug.
	ErrMissingBaseline = errors.New("baseline not found")
	// ErrMissingCapture indicates that a failure bundle holds no new capture.
	ErrMissingCapture = errors.New("captured image not found")
)

const (
	stateDir     = ".layoutguard"
	snapshotsDir = "snapshots"
	failuresDir  = "failures"

	newFile      = "new.png"
	originalFile = "original.png"
	diffFile     = "diff.png"
	imageExt     = ".png"
)

// Store manages baselines and per-test failure bundles under a root directory:
//
//	<root>/.layoutguard/snapshots/<slug>.png
//	<root>/.layoutguard/failures/<slug>/{new,original,diff}.png
//
// It is not safe for concurrent use on the same slug.
type Store struct {
	root string
}

// New returns a Store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// EnsureDirectories creates the baseline directory and the failure bundle root.
func (s *Store) EnsureDirectories() error {
	for _, dir := range []string{s.snapshotDir(), s.failureRoot()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %q: %w", dir, err)
		}
	}
	return nil
}

// BaselineExists reports whether a baseline image is stored for slug.
func (s *Store) BaselineExists(slug string) (bool, error) {
	return fileExists(s.baselinePath(slug))
}

// ReadBaseline returns the stored baseline bytes for slug.
func (s *Store) ReadBaseline(slug string) ([]byte, error) {
	data, err := os.ReadFile(s.baselinePath(slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", slug, ErrMissingBaseline)
		}
		return nil, fmt.Errorf("read baseline %q: %w", slug, err)
	}
	return data, nil
}

// WriteBaseline creates or replaces the baseline for slug. The file is written
// to a temporary name in the same directory and renamed into place, so readers
// never observe a partial image.
func (s *Store) WriteBaseline(slug string, image []byte) error {
	if err := os.MkdirAll(s.snapshotDir(), 0o755); err != nil {
		return fmt.Errorf("create %q: %w", s.snapshotDir(), err)
	}
	return writeAtomic(s.baselinePath(slug), image)
}

// WriteBaselineDirectly stores a fresh capture as the baseline without a
// failure bundle roundtrip.
func (s *Store) WriteBaselineDirectly(slug string, image []byte) error {
	return s.WriteBaseline(slug, image)
}

// WriteCapture writes the just-captured image into the failure bundle.
func (s *Store) WriteCapture(slug string, image []byte) error {
	return s.writeBundleFile(slug, newFile, image)
}

// ReadCapture returns the new image from the failure bundle for slug.
func (s *Store) ReadCapture(slug string) ([]byte, error) {
	data, err := os.ReadFile(s.bundlePath(slug, newFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", slug, ErrMissingCapture)
		}
		return nil, fmt.Errorf("read capture %q: %w", slug, err)
	}
	return data, nil
}

// SnapshotOriginalIntoBundle copies the current baseline into the bundle as
// original.png.
func (s *Store) SnapshotOriginalIntoBundle(slug string) error {
	data, err := s.ReadBaseline(slug)
	if err != nil {
		return err
	}
	return s.writeBundleFile(slug, originalFile, data)
}

// WriteDiff writes the pixel-difference image into the bundle.
func (s *Store) WriteDiff(slug string, image []byte) error {
	return s.writeBundleFile(slug, diffFile, image)
}

// PromoteToBaseline turns the bundle's new capture into the baseline and then
// removes the bundle.
func (s *Store) PromoteToBaseline(slug string) error {
	data, err := s.ReadCapture(slug)
	if err != nil {
		return err
	}
	if err := s.WriteBaseline(slug, data); err != nil {
		return err
	}
	return s.ClearBundle(slug)
}

// ClearBundle removes the failure bundle for slug. Absent bundles are not an error.
func (s *Store) ClearBundle(slug string) error {
	dir := s.BundleDir(slug)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %q: %w", dir, err)
	}
	return nil
}

// ClearLegacyBundle removes a bundle left behind by an earlier check run.
func (s *Store) ClearLegacyBundle(slug string) error {
	return s.ClearBundle(slug)
}

// BundleExists reports whether a failure bundle directory exists for slug.
func (s *Store) BundleExists(slug string) (bool, error) {
	return fileExists(s.BundleDir(slug))
}

// BundleDir returns the failure bundle directory for slug.
func (s *Store) BundleDir(slug string) string {
	return filepath.Join(s.failureRoot(), slug)
}

// DiffPath returns where the diff image for slug is written.
func (s *Store) DiffPath(slug string) string {
	return s.bundlePath(slug, diffFile)
}

// BaselinePath returns where the baseline image for slug is stored.
func (s *Store) BaselinePath(slug string) string {
	return s.baselinePath(slug)
}

func (s *Store) snapshotDir() string {
	return filepath.Join(s.root, stateDir, snapshotsDir)
}

func (s *Store) failureRoot() string {
	return filepath.Join(s.root, stateDir, failuresDir)
}

func (s *Store) baselinePath(slug string) string {
	return filepath.Join(s.snapshotDir(), slug+imageExt)
}

func (s *Store) bundlePath(slug, name string) string {
	return filepath.Join(s.BundleDir(slug), name)
}

func (s *Store) writeBundleFile(slug, name string, data []byte) error {
	dir := s.BundleDir(slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %q: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %q: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %q: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %q: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %q: %w", path, err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %q: %w", path, err)
}
