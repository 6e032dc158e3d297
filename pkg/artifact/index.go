package artifact

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// KeySeparator splits an artifact file name into its correlation key and suffix.
const KeySeparator = "_"

// Index maps correlation keys (the file name up to the first separator) to
// artifact paths.
type Index struct {
	dir   string
	files map[string]string
}

// BuildIndex lists dir and registers every file whose name contains the
// separator. Entries are visited in name order, so for duplicate keys the
// last name wins. A missing directory yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{
		dir:   dir,
		files: make(map[string]string),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("Artifact directory not readable", "dir", dir, "error", err)
		return idx
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, _, found := strings.Cut(entry.Name(), KeySeparator)
		if !found {
			continue
		}
		idx.files[key] = entry.Name()
	}

	return idx
}

// Lookup returns the path of the artifact registered for key.
func (idx *Index) Lookup(key string) (string, bool) {
	name, ok := idx.files[key]
	if !ok {
		return "", false
	}
	return filepath.Join(idx.dir, name), true
}

// Len returns the number of indexed keys.
func (idx *Index) Len() int {
	return len(idx.files)
}

// Dir returns the indexed directory.
func (idx *Index) Dir() string {
	return idx.dir
}
