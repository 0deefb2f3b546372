package annotations

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/dispatch/internal/errors"
)

// annotationLexer tokenizes a single //dispatch:: comment line.
// Rules are tried in order, so Prefix must precede Path.
var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*dispatch::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Path", Pattern: `/[^\s]*`},
	{Name: "Flag", Pattern: `-[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Ident", Pattern: `[a-zA-Z0-9_][a-zA-Z0-9_.\-/]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// annotationNode is the root of an annotation grammar match.
type annotationNode struct {
	Kind string     `parser:"Prefix @Ident"`
	Args []*argNode `parser:"@@*"`
}

type argNode struct {
	Flag  *flagNode `parser:"  @@"`
	Value *string   `parser:"| @(Path | String | Ident)"`
}

type flagNode struct {
	Key   string  `parser:"@Flag"`
	Value *string `parser:"( Equals @(Path | String | Ident) )?"`
}

// Parser parses //dispatch:: comments into ParsedAnnotation values
type Parser struct {
	grammar  *participle.Parser[annotationNode]
	registry *Registry
}

// NewParser creates a parser validating against the given schema registry.
// A nil registry means DefaultRegistry.
func NewParser(registry *Registry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{
		grammar: participle.MustBuild[annotationNode](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is meant to be a //dispatch:: annotation.
func IsAnnotation(comment string) bool {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(text, "//")), Prefix)
}

// Parse parses one comment line. target is the declaration kind the comment is
// attached to; pass 0 to skip placement checks.
func (p *Parser) Parse(comment string, target Target, loc SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)

	node, err := p.grammar.ParseString(loc.File, raw)
	if err != nil {
		return nil, errors.NewAnnotationSyntaxError(raw, loc, err)
	}

	kind, err := ParseKind(node.Kind)
	if err != nil {
		return nil, errors.NewAnnotationValidationError(node.Kind, err.Error(), raw, loc)
	}

	parsed := &ParsedAnnotation{
		Kind:     kind,
		Params:   make(map[string]string),
		Location: loc,
		Raw:      raw,
	}

	for _, arg := range node.Args {
		switch {
		case arg.Flag != nil:
			key := strings.TrimPrefix(arg.Flag.Key, "-")
			if arg.Flag.Value == nil {
				parsed.Flags = append(parsed.Flags, key)
				continue
			}
			parsed.Params[key] = unquote(*arg.Flag.Value)
		case arg.Value != nil:
			parsed.Positional = append(parsed.Positional, unquote(*arg.Value))
		}
	}

	schema, ok := p.registry.Schema(kind)
	if !ok {
		return nil, errors.NewAnnotationValidationError(kind.String(), "no schema registered", raw, loc)
	}
	if err := schema.validate(parsed, target); err != nil {
		return nil, errors.NewAnnotationValidationError(kind.String(), err.Error(), raw, loc)
	}

	return parsed, nil
}

// unquote strips surrounding double quotes from a String token.
func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		if s, err := strconv.Unquote(v); err == nil {
			return s
		}
		return v[1 : len(v)-1]
	}
	return v
}
