package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"docvault/internal/domain"
)

// Store manages the physical file layout under a single uploads root:
//
//	<root>/<base>/Versao <N> (<dd.mm.yyyy>)/<file>   live documents
//	<root>/versions/<documentId>/<file>              archived versions
//	<root>/staging/<submissionId>/<file>             review staging area
//	<root>/previews/<documentId>_v<N>.<ext>          preview cache
//
// All returned paths are relative to the root so database rows and error
// messages never carry machine-specific absolute paths.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore opens (and lazily creates) the uploads root.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, versionsDir), filepath.Join(root, stagingDir), filepath.Join(root, previewsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &domain.StorageError{Message: "failed to prepare uploads directory", Err: err}
		}
	}

	return &Store{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// LockSeries serializes the scan-then-create sequence for one series key
// so two concurrent uploads cannot compute the same version number.
// Returns the unlock function.
func (s *Store) LockSeries(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// NextVersionNumber scans the document's base directory for version
// subfolders and returns 1 + the highest number found. Scanning disk
// rather than trusting a cached counter tolerates external interference
// with the uploads tree. Callers must hold the series lock.
func (s *Store) NextVersionNumber(baseName string) (int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, baseName))
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, &domain.StorageError{Message: "failed to scan document directory", Err: err}
	}

	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if n := parseVersionDir(entry.Name()); n > highest {
			highest = n
		}
	}

	return highest + 1, nil
}

// WriteDocument stores an uploaded file in its version directory and
// returns the relative path and byte count.
func (s *Store) WriteDocument(baseName, fileName string, version int, at time.Time, src io.Reader) (string, int64, error) {
	rel := filepath.Join(baseName, VersionDirName(version, at), fileName)
	size, err := s.writeFile(rel, src)
	if err != nil {
		return "", 0, err
	}
	return rel, size, nil
}

// CopyDocument duplicates an existing stored file into a new version
// directory, used by folder duplication.
func (s *Store) CopyDocument(srcRel, baseName, fileName string, version int, at time.Time) (string, int64, error) {
	src, err := os.Open(filepath.Join(s.root, srcRel))
	if err != nil {
		return "", 0, &domain.StorageError{Message: "failed to open source file", Err: err}
	}
	defer src.Close()

	return s.WriteDocument(baseName, fileName, version, at, src)
}

// MoveToArchive relocates a superseded live file into the per-document
// archive directory and returns the new relative path.
func (s *Store) MoveToArchive(srcRel, documentID string) (string, error) {
	destDir := filepath.Join(versionsDir, documentID)
	if err := os.MkdirAll(filepath.Join(s.root, destDir), 0o755); err != nil {
		return "", &domain.StorageError{Message: "failed to prepare archive directory", Err: err}
	}

	fileName := filepath.Base(srcRel)
	destRel := filepath.Join(destDir, fileName)
	if _, err := os.Stat(filepath.Join(s.root, destRel)); err == nil {
		// Same filename archived before; disambiguate with a timestamp.
		destRel = filepath.Join(destDir, time.Now().Format("20060102150405")+"_"+fileName)
	}

	if err := s.rename(srcRel, destRel); err != nil {
		return "", err
	}

	s.pruneEmptyDirs(filepath.Dir(srcRel))
	return destRel, nil
}

// WriteStaging stores a submission file in the isolated staging area,
// invisible to the main document tree.
func (s *Store) WriteStaging(submissionID, fileName string, src io.Reader) (string, int64, error) {
	rel := filepath.Join(stagingDir, submissionID, fileName)
	size, err := s.writeFile(rel, src)
	if err != nil {
		return "", 0, err
	}
	return rel, size, nil
}

// PromoteStaging moves a staged file into permanent storage. Rename is
// atomic within one filesystem; a copy fallback covers cross-device roots.
func (s *Store) PromoteStaging(stagedRel, baseName, fileName string, version int, at time.Time) (string, int64, error) {
	destRel := filepath.Join(baseName, VersionDirName(version, at), fileName)
	if err := os.MkdirAll(filepath.Dir(filepath.Join(s.root, destRel)), 0o755); err != nil {
		return "", 0, &domain.StorageError{Message: "failed to prepare document directory", Err: err}
	}

	if err := os.Rename(filepath.Join(s.root, stagedRel), filepath.Join(s.root, destRel)); err != nil {
		src, openErr := os.Open(filepath.Join(s.root, stagedRel))
		if openErr != nil {
			return "", 0, &domain.StorageError{Message: "failed to promote staged file", Err: openErr}
		}
		_, copyErr := s.writeFile(destRel, src)
		src.Close()
		if copyErr != nil {
			return "", 0, copyErr
		}
		_ = os.Remove(filepath.Join(s.root, stagedRel))
	}

	s.pruneEmptyDirs(filepath.Dir(stagedRel))

	info, err := os.Stat(filepath.Join(s.root, destRel))
	if err != nil {
		return "", 0, &domain.StorageError{Message: "failed to stat promoted file", Err: err}
	}

	return destRel, info.Size(), nil
}

// Remove deletes a stored file and prunes directories it leaves empty,
// without touching sibling directories.
func (s *Store) Remove(rel string) error {
	if err := os.Remove(filepath.Join(s.root, rel)); err != nil && !os.IsNotExist(err) {
		return &domain.StorageError{Message: "failed to remove file", Err: err}
	}
	s.pruneEmptyDirs(filepath.Dir(rel))
	return nil
}

// Open opens a stored file for reading.
func (s *Store) Open(rel string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.NotFoundError{Message: "stored file not found"}
		}
		return nil, &domain.StorageError{Message: "failed to open stored file", Err: err}
	}
	return f, nil
}

// ReadFile reads a stored file into memory.
func (s *Store) ReadFile(rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.NotFoundError{Message: "stored file not found"}
		}
		return nil, &domain.StorageError{Message: "failed to read stored file", Err: err}
	}
	return data, nil
}

// WriteFile stores raw bytes at a relative path, creating directories as
// needed. Used by the preview cache.
func (s *Store) WriteFile(rel string, data []byte) error {
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &domain.StorageError{Message: "failed to prepare directory", Err: err}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return &domain.StorageError{Message: "failed to write file", Err: err}
	}
	return nil
}

// ModTime returns a stored file's modification time, used for preview
// cache invalidation.
func (s *Store) ModTime(rel string) (time.Time, error) {
	info, err := os.Stat(filepath.Join(s.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, &domain.NotFoundError{Message: "stored file not found"}
		}
		return time.Time{}, &domain.StorageError{Message: "failed to stat stored file", Err: err}
	}
	return info.ModTime(), nil
}

// PreviewPath returns the relative cache path for a rendered preview.
func (s *Store) PreviewPath(documentID string, version int, ext string) string {
	return filepath.Join(previewsDir, PreviewFileName(documentID, version, ext))
}

func (s *Store) writeFile(rel string, src io.Reader) (int64, error) {
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, &domain.StorageError{Message: "failed to prepare directory", Err: err}
	}

	dest, err := os.Create(abs)
	if err != nil {
		return 0, &domain.StorageError{Message: "failed to create file", Err: err}
	}

	size, err := io.Copy(dest, src)
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(abs)
		return 0, &domain.StorageError{Message: "failed to write file", Err: err}
	}

	return size, nil
}

// rename moves a file between relative paths, creating the destination
// directory first.
func (s *Store) rename(srcRel, destRel string) error {
	if err := os.MkdirAll(filepath.Dir(filepath.Join(s.root, destRel)), 0o755); err != nil {
		return &domain.StorageError{Message: "failed to prepare directory", Err: err}
	}
	if err := os.Rename(filepath.Join(s.root, srcRel), filepath.Join(s.root, destRel)); err != nil {
		return &domain.StorageError{Message: "failed to move file", Err: err}
	}
	return nil
}

// pruneEmptyDirs removes now-empty directories above a deleted file,
// walking up until a non-empty directory or the uploads root.
func (s *Store) pruneEmptyDirs(rel string) {
	for rel != "." && rel != "" && rel != string(filepath.Separator) {
		// os.Remove refuses non-empty directories, which is the stop condition.
		if err := os.Remove(filepath.Join(s.root, rel)); err != nil {
			return
		}
		rel = filepath.Dir(rel)
	}
}
