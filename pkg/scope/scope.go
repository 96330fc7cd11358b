// Package scope reduces fully qualified lexical scope paths to the name of
// the enclosing function or namespace.
package scope

import "strings"

// Resolver picks the relevant segment of a ':'-delimited scope path.
type Resolver struct {
	// AnonymousPrefix marks lambda and anonymous scopes that are skipped.
	AnonymousPrefix string
	// Program is the top-level scope segment, never used as a qualifier.
	Program string
}

// NewResolver returns a Resolver for the given markers.
func NewResolver(anonymousPrefix, program string) Resolver {
	return Resolver{AnonymousPrefix: anonymousPrefix, Program: program}
}

// EnclosingName returns the innermost named scope in path. The name is
// qualified with its parent ("Parent.name") when the path is deeper than
// three segments and the parent is itself a named, non-program scope.
func (r Resolver) EnclosingName(path string) string {
	segs := strings.Split(path, ":")

	i := len(segs) - 1
	for i > 0 && r.isAnonymous(segs[i]) {
		i--
	}
	chosen := segs[i]

	if len(segs) > 3 && i > 1 {
		parent := segs[i-1]
		if parent != r.Program && !r.isAnonymous(parent) && chosen != r.Program {
			return parent + "." + chosen
		}
	}
	return chosen
}

func (r Resolver) isAnonymous(seg string) bool {
	return (r.AnonymousPrefix != "" && strings.HasPrefix(seg, r.AnonymousPrefix)) ||
		strings.Contains(seg, " ")
}
