package utils

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(name string, entry fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(name string, entry fs.DirEntry) bool

// DefaultGoFileFilter filters for .go files, excluding tests and autogen files
func DefaultGoFileFilter() FileFilter {
	return func(name string, entry fs.DirEntry) bool {
		if entry.IsDir() {
			return false
		}

		base := entry.Name()
		return strings.HasSuffix(base, ".go") &&
			!strings.HasSuffix(base, "_test.go") &&
			!strings.HasPrefix(base, "autogen_")
	}
}

// AutogenFileFilter filters for autogen files
func AutogenFileFilter() FileFilter {
	return func(name string, entry fs.DirEntry) bool {
		if entry.IsDir() {
			return false
		}

		return strings.HasPrefix(entry.Name(), "autogen_") && strings.HasSuffix(entry.Name(), ".go")
	}
}

// DefaultDirectoryFilter skips directories that the go tool ignores or that never hold components
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(name string, entry fs.DirEntry) bool {
		if !entry.IsDir() {
			return false
		}

		base := entry.Name()

		// hidden and underscore dirs are ignored by the go tool as well
		if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
			return false
		}

		return !skipDirs[base]
	}
}

// FileProcessor lists files and sub-directories of an fs.FS with filtering.
// Results are always sorted by name so walks are deterministic.
type FileProcessor struct {
	fsys       fs.FS
	fileFilter FileFilter
	dirFilter  DirectoryFilter
}

// NewFileProcessor creates a file processor using the default Go filters
func NewFileProcessor(fsys fs.FS) *FileProcessor {
	return &FileProcessor{
		fsys:       fsys,
		fileFilter: DefaultGoFileFilter(),
		dirFilter:  DefaultDirectoryFilter(),
	}
}

// WithFileFilter replaces the file filter
func (fp *FileProcessor) WithFileFilter(filter FileFilter) *FileProcessor {
	fp.fileFilter = filter
	return fp
}

// FS returns the underlying file system
func (fp *FileProcessor) FS() fs.FS {
	return fp.fsys
}

// IsDir reports whether dir exists and is a directory
func (fp *FileProcessor) IsDir(dir string) bool {
	info, err := fs.Stat(fp.fsys, dir)
	return err == nil && info.IsDir()
}

// Files returns the slash-separated paths of matching files directly inside dir
func (fp *FileProcessor) Files(dir string) ([]string, error) {
	entries, err := fs.ReadDir(fp.fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		if fp.fileFilter(p, entry) {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

// SubDirectories returns the names of matching directories directly inside dir
func (fp *FileProcessor) SubDirectories(dir string) ([]string, error) {
	entries, err := fs.ReadDir(fp.fsys, dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if fp.dirFilter(path.Join(dir, entry.Name()), entry) {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// WalkDirectories returns dir and every descendant directory that passes the
// directory filter, parents before children.
func (fp *FileProcessor) WalkDirectories(dir string) ([]string, error) {
	result := []string{dir}
	subs, err := fp.SubDirectories(dir)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		nested, err := fp.WalkDirectories(path.Join(dir, sub))
		if err != nil {
			return nil, err
		}
		result = append(result, nested...)
	}
	return result, nil
}
