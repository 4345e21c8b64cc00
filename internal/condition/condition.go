// Package condition builds the boolean build-property expressions clients
// evaluate locally, e.g.
//
//	(GIT_BRANCH =~ "^master$") && !(GIT_TAG =~ ".+")
//
// The resolver never evaluates these; it only composes them.
package condition

import (
	"regexp"
	"strings"
)

// Build properties understood by clients.
const (
	GitTag             = "GIT_TAG"
	GitBranch          = "GIT_BRANCH"
	GitFullHash        = "GIT_FULL_HASH"
	Platform           = "PLATFORM"
	Distributor        = "WZ_PACKAGE_DISTRIBUTOR"
	WinPackageFullName = "WIN_PACKAGE_FULLNAME"
	WinLoadedModules   = "WIN_LOADEDMODULENAMES"
	FirstLaunch        = "FIRST_LAUNCH"
)

// AnyValue matches any non-empty property.
const AnyValue = ".+"

// Expr is a rendered expression.
type Expr string

func (e Expr) String() string { return string(e) }

// Match renders `prop =~ "pattern"`.
func Match(prop, pattern string) Expr {
	return Expr(prop + ` =~ "` + escape(pattern) + `"`)
}

// Exact matches prop against value literally and in full.
func Exact(prop, value string) Expr {
	return Match(prop, ExactPattern(value))
}

// ExactPattern anchors value as a literal. Metacharacters are wrapped in
// bracket expressions so the pattern stays free of backslashes.
func ExactPattern(value string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	for _, r := range value {
		switch r {
		case '.', '+', '*', '?', '(', ')', '|', '[', '{', '}', '$':
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteByte(']')
		case '^', ']', '\\':
			sb.WriteString(regexp.QuoteMeta(string(r)))
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('$')
	return sb.String()
}

// Present matches any non-empty value of prop.
func Present(prop string) Expr { return Match(prop, AnyValue) }

// OneOf matches prop against a regex alternation of patterns.
func OneOf(prop string, patterns []string) Expr {
	return Match(prop, strings.Join(patterns, "|"))
}

// Not negates e.
func Not(e Expr) Expr { return "!" + group(e) }

// And joins terms with &&; empty terms are dropped.
func And(terms ...Expr) Expr { return join(" && ", terms) }

// Or joins terms with ||; empty terms are dropped.
func Or(terms ...Expr) Expr { return join(" || ", terms) }

func join(op string, terms []Expr) Expr {
	kept := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	parts := make([]string, 0, len(kept))
	for _, t := range kept {
		parts = append(parts, string(group(t)))
	}
	return Expr(strings.Join(parts, op))
}

// group parenthesizes e unless it already is a single negated or
// parenthesized term.
func group(e Expr) Expr {
	s := string(e)
	if strings.HasPrefix(s, "!(") && balanced(s[1:]) {
		return e
	}
	if strings.HasPrefix(s, "(") && balanced(s) {
		return e
	}
	return "(" + e + ")"
}

// balanced reports whether s is one parenthesized group spanning all of s.
// Parentheses inside string literals are ignored.
func balanced(s string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0 && strings.HasSuffix(s, ")")
}

// escape protects double quotes inside a string literal.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
