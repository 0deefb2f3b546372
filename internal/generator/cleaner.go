package generator

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/utils"
)

// Clean removes generated files from the given directories. A directory
// ending in "/..." is cleaned recursively; missing directories are skipped.
// It returns the removed paths.
func Clean(directories []string) ([]string, error) {
	var removed []string
	for _, dir := range directories {
		files, err := cleanDirectory(dir)
		removed = append(removed, files...)
		if err != nil {
			return removed, errors.WrapWithOperation("clean directory", dir, err)
		}
	}
	return removed, nil
}

func cleanDirectory(dir string) ([]string, error) {
	recursive := false
	if dir == "..." || strings.HasSuffix(dir, "/...") {
		recursive = true
		dir = strings.TrimSuffix(strings.TrimSuffix(dir, "..."), "/")
		if dir == "" {
			dir = "."
		}
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	processor := utils.NewFileProcessor(os.DirFS(dir)).WithFileFilter(generatedFileFilter)
	dirs := []string{"."}
	if recursive {
		var err error
		if dirs, err = processor.WalkDirectories("."); err != nil {
			return nil, err
		}
	}

	var removed []string
	for _, sub := range dirs {
		files, err := processor.Files(sub)
		if err != nil {
			return removed, err
		}
		for _, file := range files {
			path := filepath.Join(dir, filepath.FromSlash(file))
			if err := os.Remove(path); err != nil {
				return removed, errors.WrapFileSystemError("remove", path, err)
			}
			removed = append(removed, path)
		}
	}
	return removed, nil
}

func generatedFileFilter(name string, entry fs.DirEntry) bool {
	return !entry.IsDir() && entry.Name() == OutputFile
}
