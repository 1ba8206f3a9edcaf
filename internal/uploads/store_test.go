package uploads

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllowedImage(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"photo.webp", true},
		{"photo.gif", true},
		{"script.sh", false},
		{"archive.tar.gz", false},
		{"noext", false},
	}
	for _, c := range cases {
		if got := AllowedImage(c.name); got != c.want {
			t.Errorf("AllowedImage(%q) = %v; want %v", c.name, got, c.want)
		}
	}
}

func TestSaveAndRemove(t *testing.T) {
	s := NewStore(t.TempDir())

	p, err := s.Save("gifts", "teddy.PNG", strings.NewReader("imagedata"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(p, "/uploads/gifts/gifts-") || !strings.HasSuffix(p, ".png") {
		t.Fatalf("public path = %q", p)
	}

	rel := strings.TrimPrefix(p, "/uploads/")
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if b, err := os.ReadFile(full); err != nil || string(b) != "imagedata" {
		t.Fatalf("stored file = %q, %v", b, err)
	}

	s.Remove(p)
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Fatalf("file still present after remove: %v", err)
	}

	// removing again must stay silent
	s.Remove(p)
}

func TestSaveRejectsOversize(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Save("gifts", "huge.png", io.LimitReader(zeros{}, MaxImageSize+1024))
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("oversize save = %v; want ErrImageTooLarge", err)
	}

	// nothing may be left behind on disk
	entries, err := os.ReadDir(filepath.Join(s.Root, "gifts"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d file(s) on disk", len(entries))
	}
}

func TestSaveAcceptsExactLimit(t *testing.T) {
	s := NewStore(t.TempDir())

	p, err := s.Save("gifts", "big.png", io.LimitReader(zeros{}, MaxImageSize))
	if err != nil {
		t.Fatalf("save at limit: %v", err)
	}
	rel := strings.TrimPrefix(p, "/uploads/")
	fi, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != MaxImageSize {
		t.Fatalf("stored size = %d; want %d", fi.Size(), int64(MaxImageSize))
	}
}

// zeros is an endless stream of zero bytes.
type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestSaveRejectsNonImage(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Save("gifts", "evil.exe", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for non-image upload")
	}
}

func TestRemoveIgnoresTraversal(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "uploads"))

	victim := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(victim, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Remove("/uploads/../secret.txt")
	if _, err := os.Stat(victim); err != nil {
		t.Fatalf("traversal removed file outside root: %v", err)
	}
}
