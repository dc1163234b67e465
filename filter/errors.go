package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"
)

// CompilationError reports an expression that could not be compiled. Line
// and Column are 1-based and zero when expr gave no location.
type CompilationError struct {
	Expression string
	Reason     string
	Line       int
	Column     int
	Err        error
}

func newCompilationError(expression, reason string, err error) *CompilationError {
	ce := &CompilationError{Expression: expression, Reason: reason, Err: err}

	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		ce.Reason = fileErr.Message
		ce.Line = fileErr.Line
		ce.Column = fileErr.Column + 1
	}
	return ce
}

func (e *CompilationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("filter %q: %s (line %d, column %d)", e.Expression, e.Reason, e.Line, e.Column)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}
