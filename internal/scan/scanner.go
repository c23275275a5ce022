package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"magnify/internal/config"
)

// imageExtensions is the fixed allow-list of file extensions treated as images.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// Options controls how a directory is enumerated.
type Options struct {
	// Order is one of config.OrderLexicographic or config.OrderNatural.
	Order string
	// Recursive descends into subdirectories. Relative paths (including
	// subdirectory components) determine ordering.
	Recursive bool
}

// List enumerates image files under dir in a stable order. Returned paths are
// absolute. The listing is restartable: given an unchanged directory, repeated
// calls return the same sequence.
func List(dir string, opts Options) ([]string, error) {
	var names []string
	if opts.Recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return err
				}
				// Unreadable subdirectories are skipped, not fatal.
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !IsImage(d.Name()) {
				return nil
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				return relErr
			}
			names = append(names, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list directory %s: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("list directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !IsImage(entry.Name()) {
				continue
			}
			names = append(names, entry.Name())
		}
	}

	sortNames(names, opts.Order)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// IsImage reports whether the file name carries an allowed image extension.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := imageExtensions[ext]
	return ok
}

func sortNames(names []string, order string) {
	switch order {
	case config.OrderNatural:
		sort.SliceStable(names, func(i, j int) bool {
			if r := compareNatural(names[i], names[j]); r != 0 {
				return r < 0
			}
			return names[i] < names[j]
		})
	default:
		c := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(names, func(i, j int) bool {
			if r := c.CompareString(names[i], names[j]); r != 0 {
				return r < 0
			}
			return names[i] < names[j]
		})
	}
}

// compareNatural orders digit runs by numeric value and everything else
// case-insensitively, so img_2.png sorts before img_10.png.
func compareNatural(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for la != "" && lb != "" {
		aDigit, la2 := splitRun(la)
		bDigit, lb2 := splitRun(lb)
		segA, segB := la[:len(la)-len(la2)], lb[:len(lb)-len(lb2)]
		if aDigit && bDigit {
			na := strings.TrimLeft(segA, "0")
			nb := strings.TrimLeft(segB, "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		} else if segA != segB {
			if segA < segB {
				return -1
			}
			return 1
		}
		la, lb = la2, lb2
	}
	switch {
	case la == "" && lb == "":
		return 0
	case la == "":
		return -1
	default:
		return 1
	}
}

// splitRun consumes the leading run of digits or non-digits and reports
// whether it was numeric.
func splitRun(s string) (digits bool, rest string) {
	if s == "" {
		return false, ""
	}
	digits = s[0] >= '0' && s[0] <= '9'
	i := 1
	for i < len(s) {
		d := s[i] >= '0' && s[i] <= '9'
		if d != digits {
			break
		}
		i++
	}
	return digits, s[i:]
}
