package eiep

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every structured error below unwraps to one of these so callers
// can branch with errors.Is.
var (
	ErrStructure     = errors.New("wrong number of columns")
	ErrSyntax        = errors.New("malformed CSV")
	ErrMarker        = errors.New("unexpected record marker")
	ErrDomain        = errors.New("value outside domain")
	ErrVersion       = errors.New("unsupported version")
	ErrResource      = errors.New("stream is not a valid resource")
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidHeader = errors.New("HDR record is in an invalid format")
	ErrRecordCount   = errors.New("record count mismatch")

	// ErrStop is returned by a record callback to end a read early. Parse treats it as success.
	ErrStop = errors.New("stop requested")
)

// StructuralError reports a row whose column count differs from the record's fixed width.
type StructuralError struct {
	Record   string
	Expected int
	Found    int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("Expected %d columns but found %d", e.Expected, e.Found)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructure
}

// MarkerError reports a record-type or file-type tag that doesn't match.
type MarkerError struct {
	Column   string
	Expected string
	Found    string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s %s is invalid (expecting %s)", e.Column, e.Found, e.Expected)
}

func (e *MarkerError) Unwrap() error {
	return ErrMarker
}

// DomainError reports a field value outside its enumerated or numeric domain.
type DomainError struct {
	Field  string
	Value  string
	Reason string
}

func (e *DomainError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Invalid %s %s, %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("Invalid %s %s", e.Field, e.Value)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

type VersionError struct {
	Version   string
	Supported []string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported version %q (supported: %v)", e.Version, e.Supported)
}

func (e *VersionError) Unwrap() error {
	return ErrVersion
}

// LineError attaches the 1-based input line to a detail record failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type CountError struct {
	Declared int
	Actual   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("header declares %d records but %d were found", e.Declared, e.Actual)
}

func (e *CountError) Unwrap() error {
	return ErrRecordCount
}

func domainError(field, value, reason string) error {
	return &DomainError{Field: field, Value: value, Reason: reason}
}

// IsBadFile reports whether err means the file content is malformed and the batch
// should be rejected.
func IsBadFile(err error) bool {
	return errors.Is(err, ErrStructure) ||
		errors.Is(err, ErrSyntax) ||
		errors.Is(err, ErrMarker) ||
		errors.Is(err, ErrDomain) ||
		errors.Is(err, ErrRecordCount)
}

// IsEnvironment reports whether err comes from acquiring the stream rather than its content.
func IsEnvironment(err error) bool {
	return errors.Is(err, ErrResource) || errors.Is(err, ErrFileNotFound)
}

// IsUnsupportedVersion reports whether err should be escalated to the sender.
func IsUnsupportedVersion(err error) bool {
	return errors.Is(err, ErrVersion)
}
