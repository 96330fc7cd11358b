package normalize

import "strings"

const (
	arrayToken    = "Array"
	readonlyToken = "readonly"
	importOpen    = "import("
)

// typeRule is one rewrite step applied to a type name.
type typeRule struct {
	name  string
	apply func(d Dialect, s string) string
}

// typeRules run in order. The array/readonly collapse is repeated after the
// character strip because stripping can expose a new array shape.
var typeRules = []typeRule{
	{"export", Dialect.resolveExport},
	{"collapse", func(_ Dialect, s string) string { return collapseShape(s) }},
	{"generics", func(_ Dialect, s string) string { return stripGenerics(s) }},
	{"import", func(_ Dialect, s string) string { return resolveImportCall(s) }},
	{"separator", Dialect.resolveImportSeparator},
	{"colon", func(_ Dialect, s string) string { return strings.TrimRight(s, ":") }},
	{"python", Dialect.pythonSuffixes},
	{"strip", func(_ Dialect, s string) string { return stripNoise(s) }},
	{"collapse", func(_ Dialect, s string) string { return collapseShape(s) }},
	{"ecma", Dialect.collapseEcma},
}

// TypeName canonicalizes a raw type name. It always returns exactly one
// element; the slice form leaves room for splitting union types.
func (d Dialect) TypeName(raw string) []string {
	s := raw
	for _, r := range typeRules {
		s = r.apply(d, s)
	}
	return []string{s}
}

// Label returns the single canonical type name for raw.
func (d Dialect) Label(raw string) string {
	return d.TypeName(raw)[0]
}

func (d Dialect) resolveExport(s string) string {
	if d.ExportPrefix == "" || !strings.HasPrefix(s, d.ExportPrefix) {
		return s
	}
	return lastSegment(s[len(d.ExportPrefix):])
}

func collapseShape(s string) string {
	switch {
	case strings.HasSuffix(s, "[]"),
		strings.HasPrefix(s, "Array<"),
		len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		return arrayToken
	case strings.HasPrefix(s, readonlyToken+" "):
		return readonlyToken
	}
	return s
}

// stripGenerics removes "<...>" spans, pairing the first '<' with the last
// '>' until no '<' is left or it has no closer after it.
func stripGenerics(s string) string {
	for {
		open := strings.IndexByte(s, '<')
		if open < 0 {
			return s
		}
		closing := strings.LastIndexByte(s, '>')
		if closing < open {
			return s
		}
		s = s[:open] + s[closing+1:]
	}
}

// resolveImportCall rewrites `import("./a/b").Widget` to "b.Widget".
func resolveImportCall(s string) string {
	i := strings.Index(s, importOpen)
	if i < 0 {
		return s
	}
	rest := s[i+len(importOpen):]
	closing := strings.IndexByte(rest, ')')
	if closing < 0 {
		return s
	}
	module := lastSegment(strings.Trim(rest[:closing], "\"'`"))
	member := strings.TrimPrefix(rest[closing+1:], ".")
	return joinMember(module, member)
}

// resolveImportSeparator rewrites "src/a/b.ts::program:Widget" to "b.Widget".
func (d Dialect) resolveImportSeparator(s string) string {
	if d.ImportSeparator == "" {
		return s
	}
	i := strings.Index(s, d.ImportSeparator)
	if i < 0 {
		return s
	}
	return joinMember(lastSegment(s[:i]), s[i+len(d.ImportSeparator):])
}

func (d Dialect) pythonSuffixes(s string) string {
	if !d.PythonSuffixes {
		return s
	}
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return strings.TrimSuffix(s, ".__init__")
}

func stripNoise(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\'', '\n', '\t', '\r', '(', ')', ',':
			return -1
		}
		return r
	}, s)
}

func (d Dialect) collapseEcma(s string) string {
	if d.EcmaPrefix == "" || !strings.HasPrefix(s, d.EcmaPrefix) {
		return s
	}
	if strings.HasSuffix(s, arrayToken) {
		return arrayToken
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

func lastSegment(path string) string {
	return path[strings.LastIndexByte(path, '/')+1:]
}

func joinMember(module, member string) string {
	if member == "" {
		return module
	}
	return module + "." + member
}
