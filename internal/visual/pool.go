package visual

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNoImages is returned when a pool directory holds no usable image.
var ErrNoImages = errors.New("no images in pool")

// IsImage reports whether the file content sniffs as an image.
func IsImage(path string) bool {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt.String(), "image/")
}

// Candidates lists the image files directly inside dir, sorted by name.
// Files previously written by Prepare are skipped.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image pool: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), "_optimized") {
			continue
		}
		path := filepath.Join(dir, name)
		if IsImage(path) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// PickRandom chooses one pool image uniformly at random.
func PickRandom(dir string) (string, error) {
	candidates, err := Candidates(dir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoImages, dir)
	}
	return candidates[rand.IntN(len(candidates))], nil
}
