// Package normalize canonicalizes call names and type names emitted by the
// slicer. All rules are pure functions of the input text and a Dialect.
package normalize

import "strings"

// Language identifies the source language the slices were generated from.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
)

// LookupLanguage resolves a language name or alias. It reports false for
// names it does not recognize.
func LookupLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "typescript", "ts":
		return LangTypeScript, true
	case "python", "py":
		return LangPython, true
	}
	return "", false
}

// ParseLanguage converts a string to Language, defaulting to TypeScript.
func ParseLanguage(s string) Language {
	if lang, ok := LookupLanguage(s); ok {
		return lang
	}
	return LangTypeScript
}

// MaxCallNameLen is the length above which call names get shortened.
const MaxCallNameLen = 48

// Dialect holds the marker strings the rules match against.
type Dialect struct {
	Language Language

	// OperatorPrefix marks operator pseudo-calls such as "<operator>.assignment".
	OperatorPrefix string
	// OperatorCloser, if set, is searched for and everything up to and
	// including it is dropped. Otherwise OperatorOffset bytes are dropped.
	OperatorCloser string
	OperatorOffset int

	// ExportPrefix marks types re-exported from another module.
	ExportPrefix string
	// ImportSeparator splits "<path>.<ext><sep><member>" types.
	ImportSeparator string
	// EcmaPrefix is the namespace of ECMAScript builtin types.
	EcmaPrefix string

	// SelfReceiver is the receiver name for the enclosing instance.
	SelfReceiver string
	// TempReceiverPrefix marks compiler generated temporaries.
	TempReceiverPrefix string
	// WildcardReceiver is the placeholder receiver.
	WildcardReceiver string

	// AssignmentPrefix identifies trivial assignment argument calls.
	AssignmentPrefix string

	// AnonymousScopePrefix marks lambda and anonymous scopes.
	AnonymousScopePrefix string
	// ProgramScope is the top-level scope segment.
	ProgramScope string

	// ModuleMarker is removed from rendered Python features.
	ModuleMarker string
	// PythonSuffixes enables the ".." collapse and "__init__" strip.
	PythonSuffixes bool
}

// NewDialect returns the rule configuration for lang.
func NewDialect(lang Language) Dialect {
	d := Dialect{
		Language:             lang,
		OperatorPrefix:       "<operator",
		OperatorCloser:       ">.",
		ExportPrefix:         "<export>",
		ImportSeparator:      ".ts::program:",
		EcmaPrefix:           "__ecma.",
		SelfReceiver:         "this",
		TempReceiverPrefix:   "_tmp_",
		WildcardReceiver:     "_",
		AssignmentPrefix:     "assignment",
		AnonymousScopePrefix: "<lambda>",
		ProgramScope:         "program",
	}
	if lang == LangPython {
		d.ImportSeparator = ".py:"
		d.SelfReceiver = "self"
		d.ModuleMarker = "<module>"
		d.PythonSuffixes = true
	}
	return d
}

// IsTrivialReceiver reports whether recv should never be used to qualify a call name.
func (d Dialect) IsTrivialReceiver(recv string) bool {
	return recv == d.SelfReceiver ||
		recv == d.WildcardReceiver ||
		(d.TempReceiverPrefix != "" && strings.HasPrefix(recv, d.TempReceiverPrefix))
}
