// Package scanner walks a namespace of Go source and resolves the
// //dispatch:: annotations of every type declared under it.
package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/dispatch/internal/annotations"
	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/models"
	"github.com/toyz/dispatch/internal/utils"
)

// Scanner resolves namespaces against a source tree.
// A namespace "app.service" maps to the directory "app/service" of the tree.
type Scanner struct {
	files  *utils.FileProcessor
	parser *annotations.Parser
	fset   *token.FileSet
	logger *zap.Logger
}

// New creates a scanner over fsys. A nil logger disables logging.
func New(fsys fs.FS, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		files:  utils.NewFileProcessor(fsys),
		parser: annotations.NewParser(nil),
		fset:   token.NewFileSet(),
		logger: logger.Named("scanner"),
	}
}

// NamespaceDir converts a dotted namespace to its slash-separated directory
func NamespaceDir(namespace string) string {
	return strings.ReplaceAll(strings.Trim(strings.TrimSpace(namespace), "."), ".", "/")
}

// Scan returns the fully-qualified name of every type declared under
// rootPackage, recursing into sub-namespaces.
func (s *Scanner) Scan(rootPackage string) ([]string, error) {
	components, err := s.ScanComponents(rootPackage)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name)
	}
	return names, nil
}

// ScanComponents returns a descriptor for every type declared under
// rootPackage. The package's own files come first (sorted by name, types in
// source order), then each sub-namespace in name order.
func (s *Scanner) ScanComponents(rootPackage string) ([]models.ComponentDescriptor, error) {
	pkgs, err := s.ScanPackages(rootPackage)
	if err != nil {
		return nil, err
	}

	var components []models.ComponentDescriptor
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		for _, c := range pkg.Components {
			if seen[c.Name] {
				s.logger.Warn("duplicate type declaration ignored",
					zap.String("type", c.Name),
					zap.Stringer("location", c.Location))
				continue
			}
			seen[c.Name] = true
			components = append(components, c)
		}
	}
	return components, nil
}

// ScanPackages returns the metadata of rootPackage and every sub-namespace,
// parents before children.
func (s *Scanner) ScanPackages(rootPackage string) ([]models.PackageMetadata, error) {
	namespace := strings.Trim(strings.TrimSpace(rootPackage), ".")
	if namespace == "" {
		return nil, errors.NewScanError("", "", nil)
	}

	if err := utils.ValidateNamespace(namespace); err != nil {
		return nil, errors.NewScanError(namespace, "", err)
	}

	dir := NamespaceDir(namespace)
	if !s.files.IsDir(dir) {
		return nil, errors.NewScanError(namespace, dir, fs.ErrNotExist)
	}

	dirs, err := s.files.WalkDirectories(dir)
	if err != nil {
		return nil, errors.NewScanError(namespace, dir, err)
	}

	pkgs := make([]models.PackageMetadata, 0, len(dirs))
	for _, d := range dirs {
		ns := strings.ReplaceAll(d, "/", ".")
		if strings.Contains(strings.TrimPrefix(d, dir), ".") {
			s.logger.Debug("skipping directory that cannot be named as a namespace", zap.String("dir", d))
			continue
		}
		pkg, err := s.scanDir(ns, d)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, *pkg)
	}

	s.logger.Debug("scan complete",
		zap.String("namespace", namespace),
		zap.Int("packages", len(pkgs)))
	return pkgs, nil
}

// ScanPackage returns the metadata of a single namespace without recursing.
func (s *Scanner) ScanPackage(namespace string) (*models.PackageMetadata, error) {
	namespace = strings.Trim(strings.TrimSpace(namespace), ".")
	if namespace == "" {
		return nil, errors.NewScanError("", "", nil)
	}
	if err := utils.ValidateNamespace(namespace); err != nil {
		return nil, errors.NewScanError(namespace, "", err)
	}
	dir := NamespaceDir(namespace)
	if !s.files.IsDir(dir) {
		return nil, errors.NewScanError(namespace, dir, fs.ErrNotExist)
	}
	return s.scanDir(namespace, dir)
}

func (s *Scanner) scanDir(namespace, dir string) (*models.PackageMetadata, error) {
	files, err := s.files.Files(dir)
	if err != nil {
		return nil, errors.NewScanError(namespace, dir, err)
	}

	pkg := &models.PackageMetadata{Namespace: namespace, Dir: dir}

	var parsed []*ast.File
	for _, name := range files {
		src, err := fs.ReadFile(s.files.FS(), name)
		if err != nil {
			s.logger.Warn("skipping unreadable file", zap.String("file", name), zap.Error(err))
			continue
		}
		file, err := parser.ParseFile(s.fset, name, src, parser.ParseComments)
		if err != nil {
			s.logger.Warn("skipping file with syntax errors", zap.String("file", name), zap.Error(err))
			continue
		}
		if pkg.PackageName == "" {
			pkg.PackageName = file.Name.Name
		} else if pkg.PackageName != file.Name.Name {
			s.logger.Warn("file declares a different package",
				zap.String("file", name),
				zap.String("package", file.Name.Name),
				zap.String("expected", pkg.PackageName))
		}
		parsed = append(parsed, file)
	}

	// methods may be declared in any file of the package
	routes := make(map[string][]models.RouteMethod)
	for _, file := range parsed {
		s.collectRoutes(file, routes)
	}

	for _, file := range parsed {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				desc := s.describeType(namespace, pkg.PackageName, typeSpec, doc)
				if desc.IsController() {
					desc.Routes = routes[desc.TypeName]
				} else if len(routes[desc.TypeName]) > 0 {
					s.logger.Warn("route methods on a type that is not a controller are ignored",
						zap.String("type", desc.Name),
						zap.Int("routes", len(routes[desc.TypeName])))
				}
				pkg.Components = append(pkg.Components, desc)
			}
		}
	}

	return pkg, nil
}

func (s *Scanner) describeType(namespace, pkgName string, spec *ast.TypeSpec, doc *ast.CommentGroup) models.ComponentDescriptor {
	desc := models.ComponentDescriptor{
		Name:        models.QualifiedName(namespace, spec.Name.Name),
		Namespace:   namespace,
		PackageName: pkgName,
		TypeName:    spec.Name.Name,
		Generic:     spec.TypeParams != nil && len(spec.TypeParams.List) > 0,
		Location:    s.location(spec.Pos()),
	}

	var structType *ast.StructType
	switch t := spec.Type.(type) {
	case *ast.StructType:
		if spec.Assign == 0 {
			desc.Kind = models.KindStruct
			structType = t
		}
	case *ast.InterfaceType:
		desc.Kind = models.KindInterface
		desc.Constraint = isConstraint(t)
	}

	for _, a := range s.annotationsOf(doc, annotations.TypeTarget) {
		switch a.Kind {
		case annotations.ControllerKind, annotations.ServiceKind:
			role := models.RoleController
			if a.Kind == annotations.ServiceKind {
				role = models.RoleService
			}
			if desc.Kind != models.KindStruct {
				s.logger.Warn("only struct types can be components",
					zap.String("type", desc.Name),
					zap.Stringer("location", a.Location))
				continue
			}
			if desc.Role != models.RoleNone {
				s.logger.Warn("type is already tagged, extra role ignored",
					zap.String("type", desc.Name),
					zap.Stringer("role", desc.Role),
					zap.Stringer("ignored", role))
				continue
			}
			desc.Role = role
			desc.BeanName = a.Name()
		case annotations.RouteKind:
			if desc.HasBasePath {
				s.logger.Warn("duplicate type-level route ignored",
					zap.String("type", desc.Name),
					zap.String("path", a.Path()))
				continue
			}
			desc.BasePath = a.Path()
			desc.HasBasePath = true
		}
	}

	if structType != nil && desc.IsAnnotated() {
		desc.Injections = s.injectionPoints(structType)
	}
	return desc
}

// injectionPoints returns the annotated fields declared directly on the
// struct. Embedded fields are never considered.
func (s *Scanner) injectionPoints(structType *ast.StructType) []models.InjectionPoint {
	var points []models.InjectionPoint
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			continue
		}
		for _, a := range s.annotationsOf(field.Doc, annotations.FieldTarget) {
			if a.Kind != annotations.InjectKind {
				continue
			}
			for _, name := range field.Names {
				points = append(points, models.InjectionPoint{
					Field:    name.Name,
					Name:     a.Name(),
					TypeExpr: typeString(field.Type),
					Exported: name.IsExported(),
					Location: a.Location,
				})
			}
			break
		}
	}
	return points
}

func (s *Scanner) collectRoutes(file *ast.File, routes map[string][]models.RouteMethod) {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		found := s.annotationsOf(fn.Doc, annotations.MethodTarget)
		if len(found) == 0 {
			continue
		}
		receiver := receiverName(fn)
		if receiver == "" {
			s.logger.Warn("route annotation on a function without a receiver ignored",
				zap.String("func", fn.Name.Name),
				zap.Stringer("location", found[0].Location))
			continue
		}
		for _, a := range found {
			if a.Kind != annotations.RouteKind {
				continue
			}
			routes[receiver] = append(routes[receiver], models.RouteMethod{
				Method:   fn.Name.Name,
				Path:     a.Path(),
				Location: a.Location,
			})
			break
		}
	}
}

// annotationsOf parses every //dispatch:: line of a comment group.
// Invalid annotations are logged and dropped.
func (s *Scanner) annotationsOf(doc *ast.CommentGroup, target annotations.Target) []*annotations.ParsedAnnotation {
	if doc == nil {
		return nil
	}
	var result []*annotations.ParsedAnnotation
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		a, err := s.parser.Parse(c.Text, target, s.location(c.Pos()))
		if err != nil {
			s.logger.Warn("invalid annotation ignored", zap.Error(err))
			continue
		}
		result = append(result, a)
	}
	return result
}

func (s *Scanner) location(pos token.Pos) errors.SourceLocation {
	p := s.fset.Position(pos)
	return errors.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

// isConstraint reports whether the interface carries type-set elements
// such as ~int or A | B.
func isConstraint(iface *ast.InterfaceType) bool {
	if iface.Methods == nil {
		return false
	}
	for _, field := range iface.Methods.List {
		switch field.Type.(type) {
		case *ast.FuncType, *ast.Ident, *ast.SelectorExpr:
		default:
			return true
		}
	}
	return false
}

// receiverName returns the base type name of a method receiver
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	case *ast.IndexListExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	}
	return ""
}

// typeString renders a field type expression the way it is written in source
func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name + "." + t.Sel.Name
		}
		return t.Sel.Name
	case *ast.ArrayType:
		return "[]" + typeString(t.Elt)
	case *ast.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.FuncType:
		return "func"
	case *ast.ChanType:
		return "chan " + typeString(t.Value)
	default:
		return "unknown"
	}
}
