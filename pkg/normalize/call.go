package normalize

import "strings"

// callRejectMarkers flag names that are inlined expressions rather than identifiers.
var callRejectMarkers = []string{"=", "\n", "|", "{", "[", "chain(["}

// CallName canonicalizes a raw call name. The boolean is false when the name
// is rejected.
func (d Dialect) CallName(raw string) (string, bool) {
	if raw == "" || rejectCall(raw) {
		return "", false
	}

	name := d.stripOperator(raw)
	name = stripParenReceiver(name)
	name = shortenCall(name)
	return name, true
}

func rejectCall(name string) bool {
	for _, m := range callRejectMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

func (d Dialect) stripOperator(name string) string {
	if d.OperatorPrefix == "" || !strings.HasPrefix(name, d.OperatorPrefix) {
		return name
	}
	if d.OperatorCloser != "" {
		if i := strings.Index(name, d.OperatorCloser); i >= 0 {
			return name[i+len(d.OperatorCloser):]
		}
		return name[len(d.OperatorPrefix):]
	}
	if d.OperatorOffset <= len(name) {
		return name[d.OperatorOffset:]
	}
	return name
}

// stripParenReceiver drops a parenthesized receiver expression such as
// "(a || b).push" or "(x)?.doThing".
func stripParenReceiver(name string) string {
	if !strings.HasPrefix(name, "(") {
		return name
	}
	if i := strings.Index(name, ")?."); i >= 0 {
		return name[i+3:]
	}
	if i := strings.Index(name, ")."); i >= 0 {
		return name[i+2:]
	}
	return name
}

// shortenCall caps overly long names by dropping a type assertion and then
// the argument list. Each step only runs while the name is still too long.
func shortenCall(name string) string {
	if len(name) <= MaxCallNameLen {
		return name
	}
	if i := strings.Index(name, " as "); i >= 0 {
		name = name[:i]
		if j := strings.IndexByte(name, '('); j >= 0 {
			name = name[:j]
		}
	}
	if len(name) > MaxCallNameLen && strings.HasSuffix(name, ")") {
		if j := strings.IndexByte(name, '('); j >= 0 {
			name = name[:j]
		}
	}
	return name
}
