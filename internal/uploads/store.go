// Package uploads is the disk-backed file store for entity images. Records
// reference files by public path string only; deleting a file is
// best-effort and never affects record lifecycle correctness.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MaxImageSize caps a single uploaded image.
const MaxImageSize = 5 << 20

// ErrImageTooLarge is returned when an upload exceeds MaxImageSize.
var ErrImageTooLarge = errors.New("image exceeds the size limit")

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// AllowedImage reports whether the filename carries an accepted image
// extension.
func AllowedImage(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

type Store struct {
	// Root is the on-disk upload directory, e.g. "public/uploads".
	Root string
}

func NewStore(root string) *Store { return &Store{Root: root} }

// Save streams the upload into Root/<kind>/ under a unique filename and
// returns the public path recorded on the entity.
func (s *Store) Save(kind, originalName string, r io.Reader) (string, error) {
	if !AllowedImage(originalName) {
		return "", fmt.Errorf("only image files are allowed")
	}
	dir := filepath.Join(s.Root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%d%s", kind, time.Now().UnixNano(), strings.ToLower(filepath.Ext(originalName)))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	// read one byte past the cap so an oversize upload is rejected, not
	// silently truncated
	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	if n > MaxImageSize {
		_ = os.Remove(f.Name())
		return "", ErrImageTooLarge
	}
	return path.Join("/uploads", kind, name), nil
}

// Remove deletes the file behind a public path. Best-effort: a missing or
// stubborn file is logged and swallowed, the caller's record operation has
// already succeeded.
func (s *Store) Remove(publicPath string) {
	rel, ok := strings.CutPrefix(path.Clean(publicPath), "/uploads/")
	if !ok || strings.Contains(rel, "..") {
		return
	}
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		log.Printf("remove upload %s: %v", full, err)
	}
}

// RemoveAll is Remove over a batch of paths.
func (s *Store) RemoveAll(paths []string) {
	for _, p := range paths {
		if p != "" {
			s.Remove(p)
		}
	}
}
