package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ModuleResolver maps package directories to Go import paths
type ModuleResolver struct {
	customModule string
	workDir      string
}

// NewModuleResolver creates a resolver. When customModule is set it is used
// as the module path of the working directory instead of reading go.mod.
func NewModuleResolver(customModule string) *ModuleResolver {
	return &ModuleResolver{customModule: strings.TrimSpace(customModule)}
}

// WithWorkDir overrides the directory custom module paths are anchored to
func (r *ModuleResolver) WithWorkDir(dir string) *ModuleResolver {
	r.workDir = dir
	return r
}

// ParseModuleName extracts the module name from a go.mod file
func ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in go.mod")
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod starting from the given directory and walking up
func FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found")
}

// ImportPath returns the import path of the package in dir
func (r *ModuleResolver) ImportPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	moduleName, moduleRoot, err := r.module(absDir)
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(moduleRoot, absDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("package directory %s is outside module root %s", absDir, moduleRoot)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return moduleName, nil
	}
	return moduleName + "/" + importPath, nil
}

// module returns the module path and root directory governing absDir
func (r *ModuleResolver) module(absDir string) (string, string, error) {
	if r.customModule != "" {
		root := r.workDir
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", "", fmt.Errorf("failed to get current directory: %w", err)
			}
			root = wd
		}
		root, err := filepath.Abs(root)
		if err != nil {
			return "", "", err
		}
		return r.customModule, root, nil
	}

	goModPath, err := FindGoModFile(absDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to determine module name: %w (consider using -module flag)", err)
	}
	moduleName, err := ParseModuleName(goModPath)
	if err != nil {
		return "", "", err
	}
	return moduleName, filepath.Dir(goModPath), nil
}
