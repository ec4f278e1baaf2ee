package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported image extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Name suffixes of files this tool writes. They are skipped so a rerun
// over the same directory does not process its own outputs.
var outputSuffixes = []string{
	"_transparent",
	"_fixed",
	"_fixed_aligned",
	"_fixed_grid",
	"_final",
}

// Discover lists the image files directly inside dir, sorted
// lexicographically for a deterministic processing order.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imageExtensions[ext] || isOutput(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isOutput(stem string) bool {
	for _, s := range outputSuffixes {
		if strings.HasSuffix(stem, s) {
			return true
		}
	}
	return false
}
