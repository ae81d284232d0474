// Package store is a content-addressed object store on the local filesystem.
// Objects live under <root>/objects/<hash[:2]>/<hash[2:]> keyed by the
// sha256 of their bytes.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ObjectsDir = "objects"
	RefsDir    = "refs"
)

type Store struct {
	Root string
}

// New returns a store rooted at root. Call Init before the first Put.
func New(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Init() error {
	for _, p := range []string{
		filepath.Join(s.Root, ObjectsDir),
		filepath.Join(s.Root, RefsDir),
	} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to init store at %s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) Exists() bool {
	info, err := os.Stat(s.Root)
	return err == nil && info.IsDir()
}

// Put writes data and returns its hash. Writing the same bytes twice is a
// no-op.
func (s *Store) Put(data []byte) (string, error) {
	hash := s.hash(data)
	shardDir := filepath.Join(s.Root, ObjectsDir, hash[:2])
	if err := os.MkdirAll(shardDir, 0o755); err != nil {
		return "", fmt.Errorf("shard creation failed: %w", err)
	}

	path := filepath.Join(shardDir, hash[2:])
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("fsync failed: %w", err)
	}
	return hash, nil
}

// Get reads an object by full hash or unique prefix (at least 3 chars).
func (s *Store) Get(hash string) ([]byte, error) {
	path, err := s.ResolvePath(hash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}
	return data, nil
}

// Delete removes an object by full hash or unique prefix.
func (s *Store) Delete(hash string) error {
	path, err := s.ResolvePath(hash)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// List returns the hashes of all stored objects.
func (s *Store) List() ([]string, error) {
	var hashes []string
	objRoot := filepath.Join(s.Root, ObjectsDir)

	err := filepath.Walk(objRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			shard := filepath.Base(filepath.Dir(path))
			hashes = append(hashes, shard+info.Name())
		}
		return nil
	})
	return hashes, err
}

// SetRef points a name under refs/ at a hash.
func (s *Store) SetRef(name, hash string) error {
	path := filepath.Join(s.Root, RefsDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hash+"\n"), 0644)
}

// DeleteRef removes a ref. A missing ref is not an error.
func (s *Store) DeleteRef(name string) error {
	err := os.Remove(filepath.Join(s.Root, RefsDir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Ref returns the hash a name points at.
func (s *Store) Ref(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, RefsDir, name))
	if err != nil {
		return "", fmt.Errorf("read ref %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) ResolvePath(prefix string) (string, error) {
	if len(prefix) < 3 {
		return "", fmt.Errorf("hash prefix too short")
	}

	dir := filepath.Join(s.Root, ObjectsDir, prefix[:2])
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("object %s not found", prefix)
	}

	var match string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix[2:]) {
			if match != "" {
				return "", fmt.Errorf("hash prefix %s is ambiguous", prefix)
			}
			match = filepath.Join(dir, f.Name())
		}
	}
	if match == "" {
		return "", fmt.Errorf("no object matching prefix %s", prefix)
	}
	return match, nil
}
