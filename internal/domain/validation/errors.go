package validation

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel kinds for validation errors.
var (
	ErrUnknownRule = errors.New("unknown validation rule")
	ErrInvalid     = errors.New("validation failed")
)

// FieldErrors maps input names to the rule failures found for them.
type FieldErrors map[string][]string

// Error lists every failing field, sorted by name.
func (errs FieldErrors) Error() string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, name := range names {
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(" (")
		b.WriteString(strings.Join(errs[name], ", "))
		b.WriteString(");")
	}
	return b.String()
}

// Is lets errors.Is(err, ErrInvalid) match.
func (errs FieldErrors) Is(target error) bool {
	return target == ErrInvalid
}

// Add records a failure for name.
func (errs FieldErrors) Add(name, failure string) {
	errs[name] = append(errs[name], failure)
}

// HasErrors reports whether any failure was recorded.
func (errs FieldErrors) HasErrors() bool {
	return len(errs) > 0
}
