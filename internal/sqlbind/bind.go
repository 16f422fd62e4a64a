// Package sqlbind rewrites positional SQL templates into named-parameter form.
//
// Handlers write templates with "?" markers, one per argument, in the same
// left-to-right order as the argument list. Bind replaces the N-th marker with
// "@pN" and pairs it with args[N] as a sql.NamedArg. The rewrite is purely
// textual: a "?" inside a quoted string literal is replaced like any other
// marker, so templates must not contain literal question marks.
package sqlbind

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is the positional marker recognized in templates.
const Placeholder = '?'

// NamePrefix prefixes every generated parameter name.
const NamePrefix = "p"

// ErrParameterCountMismatch is matched by every *ParameterCountMismatchError.
var ErrParameterCountMismatch = errors.New("parameter count mismatch")

// ParameterCountMismatchError reports a template whose placeholder count does
// not equal the number of supplied arguments. It is a caller bug and is never
// retried or corrected.
type ParameterCountMismatchError struct {
	Expected int // placeholders found in the template
	Received int // arguments supplied
}

func (e *ParameterCountMismatchError) Error() string {
	return fmt.Sprintf("parameter count mismatch: query expects %d, received %d", e.Expected, e.Received)
}

// Is reports whether target is ErrParameterCountMismatch.
func (e *ParameterCountMismatchError) Is(target error) bool {
	return target == ErrParameterCountMismatch
}

// BoundQuery is a named-placeholder template together with its bindings.
// Params[i] always carries the name ParamName(i).
type BoundQuery struct {
	SQL    string
	Params []sql.NamedArg
}

// Args returns the bindings in the form accepted by database/sql query methods.
func (q BoundQuery) Args() []any {
	args := make([]any, len(q.Params))
	for i, p := range q.Params {
		args[i] = p
	}
	return args
}

// ParamName returns the generated name for the placeholder at index i.
func ParamName(i int) string {
	return NamePrefix + strconv.Itoa(i)
}

// Bind rewrites template and binds args to the generated names. It fails with
// a *ParameterCountMismatchError before binding anything when the number of
// placeholders differs from len(args). Neither input is modified.
func Bind(template string, args ...any) (BoundQuery, error) {
	if n := Count(template); n != len(args) {
		return BoundQuery{}, &ParameterCountMismatchError{Expected: n, Received: len(args)}
	}

	var b strings.Builder
	b.Grow(len(template) + 2*len(args))

	n := 0
	for i := 0; i < len(template); i++ {
		if template[i] != Placeholder {
			b.WriteByte(template[i])
			continue
		}
		b.WriteByte('@')
		b.WriteString(ParamName(n))
		n++
	}

	params := make([]sql.NamedArg, len(args))
	for i, v := range args {
		params[i] = sql.Named(ParamName(i), v)
	}

	return BoundQuery{SQL: b.String(), Params: params}, nil
}

// Count returns the number of placeholders in template.
func Count(template string) int {
	return strings.Count(template, string(Placeholder))
}
