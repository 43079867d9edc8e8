// Package savedoc provides typed, validating accessors over a parsed save document.
package savedoc

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a save document and returns its root element.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, &FormatError{Element: "document", Name: "xml", Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &StructureError{Element: "document", Detail: "no root element"}
	}
	return root, nil
}

// Children returns the child elements named name, in document order.
func Children(el *etree.Element, name string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == name {
			out = append(out, child)
		}
	}
	return out
}

// OptionalChild returns the first child named name, or nil.
func OptionalChild(el *etree.Element, name string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == name {
			return child
		}
	}
	return nil
}

// RequireChild returns the only child named name.
func RequireChild(el *etree.Element, name string) (*etree.Element, error) {
	matches := Children(el, name)
	if len(matches) != 1 {
		return nil, NewStructureError(el, name, fmt.Sprintf("expected exactly 1 element, found %d", len(matches)))
	}
	return matches[0], nil
}

// RequireElement checks that el has the expected tag.
func RequireElement(el *etree.Element, name string) error {
	if el == nil {
		return &StructureError{Element: "document", Name: name, Detail: "element missing"}
	}
	if el.Tag != name {
		return NewStructureError(el, "", fmt.Sprintf("expected element %q", name))
	}
	return nil
}

// RequireAttr parses the attribute name of el.
func RequireAttr[T any](el *etree.Element, name string, parse func(string) (T, error)) (T, error) {
	var zero T
	attr := el.SelectAttr(name)
	if attr == nil {
		return zero, NewStructureError(el, name, "attribute missing")
	}
	v, err := parse(attr.Value)
	if err != nil {
		return zero, NewFormatError(el, name, attr.Value, err)
	}
	return v, nil
}

// RequireChildText parses the text content of the only child named name.
func RequireChildText[T any](el *etree.Element, name string, parse func(string) (T, error)) (T, error) {
	var zero T
	child, err := RequireChild(el, name)
	if err != nil {
		return zero, err
	}
	text := child.Text()
	v, err := parse(text)
	if err != nil {
		return zero, NewFormatError(el, name, text, err)
	}
	return v, nil
}

// AttrEquals reports whether the attribute is present and equal to want.
func AttrEquals(el *etree.Element, name, want string) bool {
	attr := el.SelectAttr(name)
	return attr != nil && attr.Value == want
}

// Bool accepts exactly "true" or "false".
func Bool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errors.New("expected true or false")
}

// Uint32 parses a base-10 unsigned 32-bit integer.
func Uint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Uint64 parses a base-10 unsigned 64-bit integer.
func Uint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// String returns the raw value unchanged.
func String(s string) (string, error) {
	return s, nil
}
