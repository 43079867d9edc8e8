package savedoc

import (
	"errors"
	"strconv"
	"testing"

	"github.com/beevik/etree"
)

func mustParse(t *testing.T, xml string) *etree.Element {
	t.Helper()
	root, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func TestRequireChild(t *testing.T) {
	root := mustParse(t, `<Root><One>1</One><Two>a</Two><Two>b</Two></Root>`)

	one, err := RequireChild(root, "One")
	if err != nil {
		t.Fatalf("expected One, got %v", err)
	}
	if one.Text() != "1" {
		t.Fatalf("expected text 1, got %q", one.Text())
	}

	for _, name := range []string{"Two", "Three"} {
		_, err := RequireChild(root, name)
		if !errors.Is(err, ErrStructure) {
			t.Fatalf("expected structure error for %s, got %v", name, err)
		}
		var serr *StructureError
		if !errors.As(err, &serr) || serr.Element != "Root" || serr.Name != name {
			t.Fatalf("expected error located at Root/%s, got %v", name, err)
		}
	}
}

func TestOptionalChild(t *testing.T) {
	root := mustParse(t, `<Root><A /></Root>`)
	if OptionalChild(root, "A") == nil {
		t.Fatalf("expected A")
	}
	if OptionalChild(root, "B") != nil {
		t.Fatalf("expected no B")
	}
	if got := len(Children(root, "A")); got != 1 {
		t.Fatalf("expected 1 child, got %d", got)
	}
}

func TestRequireAttr(t *testing.T) {
	root := mustParse(t, `<Root Count="12" Flag="true" Bad="x" />`)

	count, err := RequireAttr(root, "Count", Uint32)
	if err != nil || count != 12 {
		t.Fatalf("expected 12, got %d (%v)", count, err)
	}
	flag, err := RequireAttr(root, "Flag", Bool)
	if err != nil || !flag {
		t.Fatalf("expected true, got %v (%v)", flag, err)
	}

	_, err = RequireAttr(root, "Missing", Uint32)
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("expected structure error, got %v", err)
	}

	_, err = RequireAttr(root, "Bad", Uint32)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	var ferr *FormatError
	if !errors.As(err, &ferr) || ferr.Value != "x" || ferr.Name != "Bad" {
		t.Fatalf("expected format error carrying the raw value, got %v", err)
	}
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected wrapped parse error, got %v", err)
	}
}

func TestRequireChildText(t *testing.T) {
	root := mustParse(t, `<Root><Name>Theo</Name><Big>4294967296</Big></Root>`)
	name, err := RequireChildText(root, "Name", String)
	if err != nil || name != "Theo" {
		t.Fatalf("expected Theo, got %q (%v)", name, err)
	}
	if _, err := RequireChildText(root, "Big", Uint32); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error for uint32 overflow, got %v", err)
	}
	if _, err := RequireChildText(root, "Nope", String); !errors.Is(err, ErrStructure) {
		t.Fatalf("expected structure error, got %v", err)
	}
}

func TestRequireElement(t *testing.T) {
	root := mustParse(t, `<Root />`)
	if err := RequireElement(root, "Root"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := RequireElement(root, "Other"); !errors.Is(err, ErrStructure) {
		t.Fatalf("expected structure error, got %v", err)
	}
	if err := RequireElement(nil, "Root"); !errors.Is(err, ErrStructure) {
		t.Fatalf("expected structure error for nil element, got %v", err)
	}
}

func TestAttrEquals(t *testing.T) {
	root := mustParse(t, `<Root On="true" Off="false" />`)
	if !AttrEquals(root, "On", "true") {
		t.Fatalf("expected On to equal true")
	}
	if AttrEquals(root, "Off", "true") {
		t.Fatalf("expected Off not to equal true")
	}
	if AttrEquals(root, "Missing", "true") {
		t.Fatalf("expected missing attribute not to match")
	}
}

func TestBool(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "true", want: true},
		{in: "false", want: false},
		{in: "True", wantErr: true},
		{in: "1", wantErr: true},
		{in: "", wantErr: true},
	} {
		got, err := Bool(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Bool(%q): expected error %v, got %v", tc.in, tc.wantErr, err)
		}
		if got != tc.want {
			t.Fatalf("Bool(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("<Root>")); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error for unclosed element, got %v", err)
	}
	if _, err := Parse(nil); !errors.Is(err, ErrStructure) {
		t.Fatalf("expected structure error for empty input, got %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	serr := &StructureError{Element: "AreaStats", Name: "Modes", Detail: "expected exactly 1 element, found 0"}
	if got := serr.Error(); got != "AreaStats/Modes: expected exactly 1 element, found 0" {
		t.Fatalf("unexpected message %q", got)
	}
	ferr := &FormatError{Element: "SaveData", Name: "CheatMode", Value: "yes", Err: errors.New("expected true or false")}
	if got := ferr.Error(); got != `SaveData/CheatMode: invalid value "yes": expected true or false` {
		t.Fatalf("unexpected message %q", got)
	}
	if errors.Is(serr, ErrFormat) || errors.Is(ferr, ErrStructure) {
		t.Fatalf("error classes must not overlap")
	}
}
