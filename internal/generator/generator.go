// Package generator writes the autogen_components.go files that register
// annotated types with the dispatch catalog at compile time.
package generator

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/logging"
	"github.com/toyz/dispatch/internal/models"
	"github.com/toyz/dispatch/internal/scanner"
	"github.com/toyz/dispatch/internal/templates"
	"github.com/toyz/dispatch/internal/utils"
)

const (
	// OutputFile is the name of the generated file in every package directory
	OutputFile = "autogen_components.go"

	// RuntimeImport is the import path of the runtime package used by generated code
	RuntimeImport = "github.com/toyz/dispatch/pkg/dispatch"
)

// Config holds the configuration for one generation run
type Config struct {
	// Root is the source root holding the namespace directories
	Root string

	// ScanPackage is the root namespace to generate for, e.g. "app"
	ScanPackage string
}

// GeneratedFile is a rendered registration file
type GeneratedFile struct {
	PackageName string
	FilePath    string
	Content     string
}

// Summary contains information about a generation run
type Summary struct {
	PackagesProcessed int
	ControllersFound  int
	ServicesFound     int
	RoutesFound       int
	CapabilitiesFound int
	GeneratedFiles    []string
	Duration          time.Duration
}

// Generator coordinates scanning and code generation
type Generator struct {
	resolver    *ModuleResolver
	templates   *templates.TemplateRegistry
	diagnostics *utils.DiagnosticSystem
	logger      *zap.Logger
}

// NewGenerator creates a generator. diagnostics and logger may be nil.
func NewGenerator(resolver *ModuleResolver, diagnostics *utils.DiagnosticSystem, logger *zap.Logger) *Generator {
	if resolver == nil {
		resolver = NewModuleResolver("")
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Generator{
		resolver:    resolver,
		templates:   templates.NewTemplateRegistry(),
		diagnostics: diagnostics,
		logger:      logging.OrNop(logger).Named("generator"),
	}
}

// Run scans cfg.ScanPackage under cfg.Root and writes one registration file
// per package that declares something to register.
func (g *Generator) Run(cfg Config) (Summary, error) {
	start := time.Now()
	summary := Summary{GeneratedFiles: make([]string, 0)}

	g.diagnostics.PhaseHeader("Scanning")
	pkgs, err := scanner.New(os.DirFS(cfg.Root), g.logger).ScanPackages(cfg.ScanPackage)
	if err != nil {
		return summary, err
	}

	for i := range pkgs {
		pkg := &pkgs[i]
		summary.PackagesProcessed++
		summary.ControllersFound += len(pkg.Controllers())
		summary.ServicesFound += len(pkg.Services())
		summary.RoutesFound += pkg.RouteCount()
		g.diagnostics.PhaseItem("Parsed " + pkg.Namespace)

		if !hasRegistrations(pkg) {
			g.diagnostics.Verbose("Nothing to register in %s", pkg.Namespace)
			continue
		}

		dir := filepath.Join(cfg.Root, filepath.FromSlash(pkg.Dir))
		importPath, err := g.resolver.ImportPath(dir)
		if err != nil {
			genErr := errors.WrapGenerateError(filepath.Join(dir, OutputFile), err)
			genErr.WithSuggestion("run from inside the module or pass -module")
			return summary, genErr
		}

		file, err := g.GeneratePackage(pkg, dir, importPath)
		if err != nil {
			return summary, err
		}
		summary.CapabilitiesFound += len(registrableInterfaces(pkg))

		g.diagnostics.PhaseProgress("Writing " + file.FilePath)
		if err := os.WriteFile(file.FilePath, []byte(file.Content), 0o644); err != nil {
			return summary, errors.WrapFileSystemError("write", file.FilePath, err)
		}
		summary.GeneratedFiles = append(summary.GeneratedFiles, file.FilePath)
		g.logger.Debug("generated file",
			zap.String("namespace", pkg.Namespace),
			zap.String("file", file.FilePath))
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// GeneratePackage renders the registration file for pkg, to be written in dir
func (g *Generator) GeneratePackage(pkg *models.PackageMetadata, dir, importPath string) (*GeneratedFile, error) {
	filePath := filepath.Join(dir, OutputFile)

	data := templates.ComponentsData{
		PackageName:   pkg.PackageName,
		RuntimeImport: RuntimeImport,
		Namespace:     pkg.Namespace,
		ImportPath:    importPath,
	}
	for _, iface := range registrableInterfaces(pkg) {
		data.Capabilities = append(data.Capabilities, templates.TypeRef{TypeName: iface.TypeName, Name: iface.Name})
	}
	for i := range pkg.Components {
		c := &pkg.Components[i]
		if !c.IsAnnotated() {
			continue
		}
		if !c.Instantiable() {
			g.diagnostics.Warn("Skipping generic component %s", c.Name)
			continue
		}
		data.Types = append(data.Types, templates.TypeRef{TypeName: c.TypeName, Name: c.Name, Role: c.Role.String()})
	}

	content, err := g.templates.Execute(templates.ComponentsTemplate, data)
	if err != nil {
		return nil, errors.WrapGenerateError(filePath, err)
	}

	formatted, err := imports.Process(filePath, []byte(content), nil)
	if err != nil {
		return nil, errors.WrapGenerateError(filePath, err)
	}

	return &GeneratedFile{
		PackageName: pkg.PackageName,
		FilePath:    filePath,
		Content:     string(formatted),
	}, nil
}

func registrableInterfaces(pkg *models.PackageMetadata) []models.ComponentDescriptor {
	var out []models.ComponentDescriptor
	for _, iface := range pkg.Interfaces() {
		if iface.Instantiable() {
			out = append(out, iface)
		}
	}
	return out
}

func hasRegistrations(pkg *models.PackageMetadata) bool {
	if len(registrableInterfaces(pkg)) > 0 {
		return true
	}
	for i := range pkg.Components {
		if pkg.Components[i].IsAnnotated() && pkg.Components[i].Instantiable() {
			return true
		}
	}
	return false
}
