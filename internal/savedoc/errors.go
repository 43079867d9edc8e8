package savedoc

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// Error classes. Every error returned by this package matches one of them with errors.Is.
var (
	// ErrStructure: an element or attribute is missing or occurs the wrong number of times.
	ErrStructure = errors.New("unexpected save structure")
	// ErrFormat: a value is present but cannot be parsed or is out of range.
	ErrFormat = errors.New("malformed save value")
)

// StructureError describes a missing or repeated element or attribute.
type StructureError struct {
	Element string
	Name    string
	Detail  string
}

// NewStructureError builds a StructureError located at el.
func NewStructureError(el *etree.Element, name, detail string) *StructureError {
	return &StructureError{Element: tagOf(el), Name: name, Detail: detail}
}

func (e *StructureError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s", e.Element, e.Detail)
	}
	return fmt.Sprintf("%s/%s: %s", e.Element, e.Name, e.Detail)
}

// Is matches ErrStructure.
func (e *StructureError) Is(target error) bool {
	return target == ErrStructure
}

// FormatError describes a value that failed to parse or is out of range.
type FormatError struct {
	Element string
	Name    string
	Value   string
	Err     error
}

// NewFormatError builds a FormatError located at el.
func NewFormatError(el *etree.Element, name, value string, err error) *FormatError {
	return &FormatError{Element: tagOf(el), Name: name, Value: value, Err: err}
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s/%s: invalid value %q: %v", e.Element, e.Name, e.Value, e.Err)
}

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func tagOf(el *etree.Element) string {
	if el == nil {
		return "document"
	}
	return el.Tag
}
