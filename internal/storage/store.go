// Package storage implements the on-disk file store for study-case
// archives. Files live under {root}/study_cases_files/{nom_etude}/ and the
// directory name is derived from the study case's display name, so renames
// must move the whole directory. All directory operations for a given name
// are serialized through a keyed lock to keep concurrent renames and
// uploads from racing each other.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// CaseFilesDir is the directory prefix all stored archive paths share. It
// is part of the persisted zip_file strings, so it must never change for
// an existing deployment.
const CaseFilesDir = "study_cases_files"

// MaxArchiveSize caps uploads at 10 MiB.
const MaxArchiveSize = 10 << 20

// Sentinel errors surfaced to handlers.
var (
	// ErrDirExists means the rename target directory is already taken.
	ErrDirExists = errors.New("directory already exists")
	// ErrDirMissing means the rename source directory does not exist.
	ErrDirMissing = errors.New("directory does not exist")
	// ErrBadName rejects study-case names that cannot be used as a
	// directory name (path separators, traversal, empty).
	ErrBadName = errors.New("invalid study case name")
	// ErrBadExtension rejects files that are not a known archive format.
	ErrBadExtension = errors.New("file is not a supported archive")
	// ErrTooLarge rejects uploads over MaxArchiveSize.
	ErrTooLarge = errors.New("file exceeds maximum size")
)

// archiveExts lists the accepted archive extensions, matching the formats
// the frontend produces.
var archiveExts = map[string]bool{
	".zip": true, ".rar": true, ".7z": true, ".gz": true, ".tar": true,
}

// Store is a local-disk file store rooted at a base directory. The zero
// value is not usable; construct with New.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is swappable in tests so stored filenames are predictable.
	now func() time.Time
}

// New returns a Store rooted at dir, creating the case-files directory if
// needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, CaseFilesDir), 0o755); err != nil {
		return nil, err
	}
	return &Store{root: dir, locks: map[string]*sync.Mutex{}, now: time.Now}, nil
}

// lockName returns the mutex serializing operations on one study-case
// directory.
func (s *Store) lockName(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[name]
	if !ok {
		m = &sync.Mutex{}
		s.locks[name] = m
	}
	return m
}

// lockPair acquires the locks for two names in a stable order so that
// concurrent renames A->B and B->A cannot deadlock.
func (s *Store) lockPair(a, b string) func() {
	names := []string{a, b}
	sort.Strings(names)
	first, second := s.lockName(names[0]), s.lockName(names[1])
	first.Lock()
	if second != first {
		second.Lock()
	}
	return func() {
		if second != first {
			second.Unlock()
		}
		first.Unlock()
	}
}

// ValidateName reports whether a study-case name is safe to use as a
// directory name.
func ValidateName(name string) error {
	if name == "" || len(name) > 255 {
		return ErrBadName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." ||
		strings.Contains(name, "..") {
		return ErrBadName
	}
	return nil
}

// CheckArchive validates the client filename and declared size before any
// bytes are written.
func CheckArchive(filename string, size int64) error {
	if !archiveExts[strings.ToLower(filepath.Ext(filename))] {
		return ErrBadExtension
	}
	if size > MaxArchiveSize {
		return ErrTooLarge
	}
	return nil
}

// dirPath returns the absolute directory for a study-case name.
func (s *Store) dirPath(name string) string {
	return filepath.Join(s.root, CaseFilesDir, name)
}

// absPath resolves a stored relative path ("study_cases_files/...") to an
// absolute one.
func (s *Store) absPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// DirExists reports whether a study-case directory is present on disk.
func (s *Store) DirExists(name string) bool {
	info, err := os.Stat(s.dirPath(name))
	return err == nil && info.IsDir()
}

// SaveArchive streams an upload into the study case's directory. The
// stored filename is the client's base name suffixed with the upload's
// unix timestamp to avoid collisions, e.g. "results_1724830000.zip".
// It returns the relative path to persist in the database.
func (s *Store) SaveArchive(name, clientFilename string, src io.Reader) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(clientFilename))
	if !archiveExts[ext] {
		return "", ErrBadExtension
	}

	lock := s.lockName(name)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.dirPath(name), 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(clientFilename), filepath.Ext(clientFilename))
	final := fmt.Sprintf("%s_%d%s", base, s.now().Unix(), ext)
	rel := path.Join(CaseFilesDir, name, final)

	dst, err := os.Create(s.absPath(rel))
	if err != nil {
		return "", err
	}
	// Copy one byte past the cap so oversized uploads are detected even
	// when the declared size was absent or wrong.
	n, err := io.Copy(dst, io.LimitReader(src, MaxArchiveSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(s.absPath(rel))
		return "", err
	}
	if n > MaxArchiveSize {
		_ = os.Remove(s.absPath(rel))
		return "", ErrTooLarge
	}
	return rel, nil
}

// RenameDir moves a study-case directory from oldName to newName and
// returns the rewritten archive path. It fails with ErrDirExists when the
// target is taken and ErrDirMissing when the source is absent, leaving the
// disk untouched in both cases. The returned path substitutes the old
// directory prefix with the new one inside oldZipFile; an empty oldZipFile
// yields an empty result.
func (s *Store) RenameDir(oldName, newName, oldZipFile string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", err
	}
	unlock := s.lockPair(oldName, newName)
	defer unlock()

	if s.DirExists(newName) {
		return "", ErrDirExists
	}
	if !s.DirExists(oldName) {
		return "", ErrDirMissing
	}
	if err := os.Rename(s.dirPath(oldName), s.dirPath(newName)); err != nil {
		return "", err
	}
	return RewritePrefix(oldZipFile, oldName, newName), nil
}

// RewritePrefix substitutes the directory segment of a stored archive path
// after a rename. It is a pure string operation so it can be verified
// independently of the filesystem.
func RewritePrefix(zipFile, oldName, newName string) string {
	if zipFile == "" {
		return ""
	}
	oldPrefix := CaseFilesDir + "/" + oldName
	newPrefix := CaseFilesDir + "/" + newName
	return strings.Replace(zipFile, oldPrefix, newPrefix, 1)
}

// DeleteFile removes a single stored archive. Missing files are not an
// error; the store is best-effort about stale paths.
func (s *Store) DeleteFile(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(s.absPath(rel))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// RemoveDir deletes a study-case directory recursively. Used on study
// case deletion; the database row is removed afterwards, so a failure here
// is logged by the caller rather than blocking the delete.
func (s *Store) RemoveDir(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	lock := s.lockName(name)
	lock.Lock()
	defer lock.Unlock()
	return os.RemoveAll(s.dirPath(name))
}
