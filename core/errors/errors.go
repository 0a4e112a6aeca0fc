// Package errors provides standardized error types and helpers for the TextIndex codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the indexing taxonomy. Fatal errors abort the run;
// the document is returned unmodified.
var (
	// ErrMalformedToken indicates an annotation token that violates the directive grammar
	ErrMalformedToken = errors.New("malformed token")
	// ErrUnknownAnchor indicates a reference to an anchor name that is never defined
	ErrUnknownAnchor = errors.New("unknown anchor")
	// ErrDuplicateAnchor indicates two definitions of the same anchor name
	ErrDuplicateAnchor = errors.New("duplicate anchor")
	// ErrConflictingAlias indicates an alias that collides with an established entry
	ErrConflictingAlias = errors.New("conflicting alias")
	// ErrAmbiguousEntry indicates an entry that is both a redirect and a locator target
	ErrAmbiguousEntry = errors.New("ambiguous entry")
	// ErrMultiplePlaceholders indicates more than one index placeholder line
	ErrMultiplePlaceholders = errors.New("multiple placeholders")
	// ErrInvalidInput indicates invalid input or an unusable configuration
	ErrInvalidInput = errors.New("invalid input")
)

// TokenError reports an annotation token the scanner could not accept.
type TokenError struct {
	Line    int    // 1-based line of the token
	Col     int    // 1-based column of the token
	Body    string // Raw directive body, if one was isolated
	Message string // What was wrong with it
	Err     error  // Underlying error, if any
}

func (e *TokenError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("malformed token at %d:%d: %s in {^%s}", e.Line, e.Col, e.Message, e.Body)
	}
	return fmt.Sprintf("malformed token at %d:%d: %s", e.Line, e.Col, e.Message)
}

func (e *TokenError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedToken
}

// UnknownAnchorError reports a reference to an anchor no token defines.
type UnknownAnchorError struct {
	Name string // Anchor name as referenced, without the # prefix
	Line int    // 1-based line of the reference
	Col  int    // 1-based column of the reference
	Err  error  // Underlying error, if any
}

func (e *UnknownAnchorError) Error() string {
	return fmt.Sprintf("unknown anchor #%s at %d:%d", e.Name, e.Line, e.Col)
}

func (e *UnknownAnchorError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnknownAnchor
}

// DuplicateAnchorError reports a second definition of an anchor name.
type DuplicateAnchorError struct {
	Name      string // Anchor name, without the # prefix
	Line      int    // 1-based line of the second definition
	Col       int    // 1-based column of the second definition
	FirstLine int    // 1-based line of the first definition
	FirstCol  int    // 1-based column of the first definition
	Err       error  // Underlying error, if any
}

func (e *DuplicateAnchorError) Error() string {
	return fmt.Sprintf("duplicate anchor #%s at %d:%d (first defined at %d:%d)",
		e.Name, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func (e *DuplicateAnchorError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDuplicateAnchor
}

// AliasError reports an alias path that cannot coexist with the registry.
type AliasError struct {
	Alias     string // Alias heading path, display form
	Canonical string // Canonical heading path the alias points at
	Message   string // Why the alias was rejected
	Err       error  // Underlying error, if any
}

func (e *AliasError) Error() string {
	if e.Canonical != "" {
		return fmt.Sprintf("conflicting alias %q for %q: %s", e.Alias, e.Canonical, e.Message)
	}
	return fmt.Sprintf("conflicting alias %q: %s", e.Alias, e.Message)
}

func (e *AliasError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConflictingAlias
}

// AmbiguousEntryError reports an entry used both as a See redirect and as
// a direct locator target.
type AmbiguousEntryError struct {
	Heading string // Display heading path of the entry
	Line    int    // 1-based line of the token that made it ambiguous
	Col     int    // 1-based column of that token
	Message string // Which combination was rejected
	Err     error  // Underlying error, if any
}

func (e *AmbiguousEntryError) Error() string {
	return fmt.Sprintf("ambiguous entry %q at %d:%d: %s", e.Heading, e.Line, e.Col, e.Message)
}

func (e *AmbiguousEntryError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrAmbiguousEntry
}

// PlaceholderError reports extra index placeholder lines.
type PlaceholderError struct {
	Line      int   // 1-based line of the extra placeholder
	FirstLine int   // 1-based line of the first placeholder
	Err       error // Underlying error, if any
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("multiple index placeholders: line %d (first at line %d)", e.Line, e.FirstLine)
}

func (e *PlaceholderError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMultiplePlaceholders
}

// Warning codes for conditions that are reported but never abort a run.
const (
	WarnEmptyIndex         = "empty-index"
	WarnMissingPlaceholder = "missing-placeholder"
	WarnUnusedAnchor       = "unused-anchor"
	WarnStrayRangeClose    = "stray-range-close"
	WarnDanglingXref       = "dangling-xref"
)

// Warning is a non-fatal diagnostic attached to an otherwise successful run.
type Warning struct {
	Code    string // One of the Warn* constants
	Line    int    // 1-based line, or 0 when not positional
	Message string // Human-readable description
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", w.Code, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Helper functions for creating common errors

// NewToken creates a TokenError
func NewToken(line, col int, body, message string) *TokenError {
	return &TokenError{
		Line:    line,
		Col:     col,
		Body:    body,
		Message: message,
	}
}

// NewUnknownAnchor creates an UnknownAnchorError
func NewUnknownAnchor(name string, line, col int) *UnknownAnchorError {
	return &UnknownAnchorError{
		Name: name,
		Line: line,
		Col:  col,
	}
}

// NewDuplicateAnchor creates a DuplicateAnchorError
func NewDuplicateAnchor(name string, line, col, firstLine, firstCol int) *DuplicateAnchorError {
	return &DuplicateAnchorError{
		Name:      name,
		Line:      line,
		Col:       col,
		FirstLine: firstLine,
		FirstCol:  firstCol,
	}
}

// NewConflictingAlias creates an AliasError
func NewConflictingAlias(alias, canonical, message string) *AliasError {
	return &AliasError{
		Alias:     alias,
		Canonical: canonical,
		Message:   message,
	}
}

// NewAmbiguousEntry creates an AmbiguousEntryError
func NewAmbiguousEntry(heading string, line, col int, message string) *AmbiguousEntryError {
	return &AmbiguousEntryError{
		Heading: heading,
		Line:    line,
		Col:     col,
		Message: message,
	}
}

// NewMultiplePlaceholders creates a PlaceholderError
func NewMultiplePlaceholders(line, firstLine int) *PlaceholderError {
	return &PlaceholderError{
		Line:      line,
		FirstLine: firstLine,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
