package xmltree

import "testing"

func TestParse(t *testing.T) {
	root, err := Parse(`<mxfile host="app"><diagram name="Page-1" id="p1">abc<b>def</b></diagram></mxfile>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Name() != "mxfile" {
		t.Errorf("root = %q, want mxfile", root.Name())
	}
	if v, ok := root.Attr("host"); !ok || v != "app" {
		t.Errorf("Attr(host) = %q, %v", v, ok)
	}
	if root.AttrOr("missing", "def") != "def" {
		t.Error("AttrOr should return default for missing attribute")
	}

	d := root.Child("diagram")
	if d == nil {
		t.Fatal("diagram child not found")
	}
	if got := d.TextContent(); got != "abcdef" {
		t.Errorf("TextContent = %q, want %q", got, "abcdef")
	}
	if root.Find("b") == nil {
		t.Error("Find(b) should locate nested element")
	}
	if root.Find("mxGraphModel") != nil {
		t.Error("Find should return nil when absent")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"<a><b></a>",
		"<a",
		"<a/><b",
		"<a/></c>",
		"<a/>garbage<<<",
		"<a/><b/>",
	}
	for _, in := range tests {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestParseAllowsTrailingMisc(t *testing.T) {
	tests := []string{
		"<a/>\n",
		"<a/> <!-- saved by draw.io -->\n",
		"<a/><?pi data?>",
	}
	for _, in := range tests {
		root, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q): %v", in, err)
			continue
		}
		if root.Name() != "a" {
			t.Errorf("Parse(%q) root = %q, want a", in, root.Name())
		}
	}
}

func TestParseHTMLEntities(t *testing.T) {
	root, err := Parse(`<mxCell value="a&nbsp;b"/>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, _ := root.Attr("value"); v != "a\u00a0b" {
		t.Errorf("value = %q", v)
	}
}

func TestParseCharset(t *testing.T) {
	root, err := Parse("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a v=\"caf\xe9\"/>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, _ := root.Attr("v"); v != "café" {
		t.Errorf("v = %q, want café", v)
	}
}
