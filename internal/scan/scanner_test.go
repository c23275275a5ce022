package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"magnify/internal/config"
	"magnify/internal/scan"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte{0x42}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestListFiltersAndOrdersLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "B.png", "a.jpg", "notes.txt", "c.webp")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, dir, "sub/nested.png")

	got, err := scan.List(dir, scan.Options{Order: config.OrderLexicographic})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a.jpg", "B.png", "c.webp"}
	names := baseNames(got)
	if len(names) != len(want) {
		t.Fatalf("got %v want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("position %d: got %v want %v", i, names, want)
		}
	}
}

func TestListNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "img_10.png", "img_2.png", "img_1.png")

	got, err := scan.List(dir, scan.Options{Order: config.OrderNatural})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"img_1.png", "img_2.png", "img_10.png"}
	names := baseNames(got)
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("position %d: got %v want %v", i, names, want)
		}
	}
}

func TestListIsRestartable(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "x.png", "y.png", "z.png")

	first, err := scan.List(dir, scan.Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := scan.List(dir, scan.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence changed between calls: %v vs %v", first, second)
		}
	}
}

func TestListRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.png", "sub/inner.png")

	got, err := scan.List(dir, scan.Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
}

func TestListUnreadableDirectory(t *testing.T) {
	_, err := scan.List(filepath.Join(t.TempDir(), "missing"), scan.Options{})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestIsImage(t *testing.T) {
	for _, name := range []string{"a.PNG", "b.jpeg", "c.tif"} {
		if !scan.IsImage(name) {
			t.Fatalf("expected %s to be an image", name)
		}
	}
	for _, name := range []string{"a.gif", "b.txt", "noext"} {
		if scan.IsImage(name) {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}
