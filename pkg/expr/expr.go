// Package expr compiles and evaluates numeric property expressions written in
// a sandboxed zygomys Lisp, e.g. (* 2 (ref "Sketch1" "Width")).
//
// References to other objects are only allowed as (ref "Object" "Property")
// with literal arguments, so the dependencies of an expression are known
// without evaluating it.
package expr

import (
	"regexp"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("paracad.expr")

// Ref names a numeric property of another object.
type Ref struct {
	Object   string
	Property string
}

func (r Ref) String() string { return r.Object + "." + r.Property }

// Expr is a compiled expression.
type Expr struct {
	src  string
	code string
	refs []Ref
}

var (
	refCall    = regexp.MustCompile(`\(\s*ref\b`)
	refLiteral = regexp.MustCompile(`\(\s*ref\s+"([^"\\]+)"\s+"([^"\\]+)"\s*\)`)
)

// Compile checks src and extracts its references.
func Compile(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.NotValidf("empty expression")
	}
	code := preprocessSource(src)
	calls := len(refCall.FindAllStringIndex(code, -1))
	matches := refLiteral.FindAllStringSubmatch(code, -1)
	if calls != len(matches) {
		return nil, errors.NotValidf("expression %q: ref takes two string literals", src)
	}
	e := &Expr{src: src, code: code}
	seen := make(map[Ref]bool)
	for _, m := range matches {
		r := Ref{Object: m[1], Property: m[2]}
		if seen[r] {
			continue
		}
		seen[r] = true
		e.refs = append(e.refs, r)
	}
	if err := checkSyntax(code); err != nil {
		return nil, errors.Annotatef(err, "expression %q", src)
	}
	return e, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Source returns the text the expression was compiled from.
func (e *Expr) Source() string { return e.src }

// Refs returns the referenced properties in order of first appearance.
func (e *Expr) Refs() []Ref {
	return append([]Ref(nil), e.refs...)
}

// References reports whether the expression reads any property of object.
func (e *Expr) References(object string) bool {
	for _, r := range e.refs {
		if r.Object == object {
			return true
		}
	}
	return false
}

// preprocessSource rewrites ; line comments into the // form zygomys
// understands, leaving string literals alone.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+8)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}
