package syntax

import "testing"

func TestTextStyleNames(t *testing.T) {
	styles := TextStyles()
	if len(styles) != 31 {
		t.Fatalf("len(TextStyles()) = %d, want 31", len(styles))
	}
	for _, s := range styles {
		got, ok := ParseTextStyle(s.String())
		if !ok || got != s {
			t.Errorf("ParseTextStyle(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseTextStyle("dsNope"); ok {
		t.Error("ParseTextStyle(dsNope) ok = true, want false")
	}
	if TextStyleKeyword.String() != "dsKeyword" {
		t.Errorf("TextStyleKeyword.String() = %q", TextStyleKeyword.String())
	}
}

func TestInvalidFormat(t *testing.T) {
	var f Format
	if f.IsValid() {
		t.Error("IsValid() = true, want false")
	}
	if f.ID() != 0 {
		t.Errorf("ID() = %d, want 0", f.ID())
	}
	if f.Name() != "" || f.DefinitionName() != "" {
		t.Errorf("Name() = %q, DefinitionName() = %q, want empty", f.Name(), f.DefinitionName())
	}
	if !f.SpellCheck() {
		t.Error("SpellCheck() = false, want true")
	}
	if !f.IsDefaultTextStyle() {
		t.Error("IsDefaultTextStyle() = false, want true")
	}
}

const formatsYAML = `
name: Formats
contexts:
  - name: Normal
    attribute: Normal Text
formats:
  - name: Normal Text
  - name: Comment
    style: dsComment
    italic: true
    spellChecking: true
  - name: Code
    style: dsFunction
    color: "#ff0000"
    spellChecking: false
`

func TestDefinitionFormats(t *testing.T) {
	repo := newTestRepository(t, formatsYAML, foldingYAML)
	def := mustDefinition(t, repo, "Formats")

	formats := def.Formats()
	if len(formats) != 3 {
		t.Fatalf("len(Formats()) = %d, want 3", len(formats))
	}

	seen := map[int]bool{}
	for _, f := range formats {
		if !f.IsValid() || f.ID() == 0 {
			t.Errorf("format %v is not valid", f)
		}
		if seen[f.ID()] {
			t.Errorf("duplicate format id %d", f.ID())
		}
		seen[f.ID()] = true
		if f.DefinitionName() != "Formats" {
			t.Errorf("DefinitionName() = %q, want Formats", f.DefinitionName())
		}
	}

	// ids are unique across definitions of one repository
	for _, f := range mustDefinition(t, repo, "Fold").Formats() {
		if seen[f.ID()] {
			t.Errorf("format id %d reused by another definition", f.ID())
		}
	}

	comment := def.Format("Comment")
	if comment.TextStyle() != TextStyleComment {
		t.Errorf("TextStyle() = %v, want dsComment", comment.TextStyle())
	}
	if it := comment.Overrides().Italic; it == nil || !*it {
		t.Error("Overrides().Italic should be true")
	}
	if comment.IsDefaultTextStyle() {
		t.Error("IsDefaultTextStyle() = true, want false")
	}

	code := def.Format("Code")
	if code.Overrides().Color != "#ff0000" {
		t.Errorf("Overrides().Color = %q, want #ff0000", code.Overrides().Color)
	}
	if code.SpellCheck() {
		t.Error("SpellCheck() = true, want false")
	}
	if code.String() != "Formats:Code" {
		t.Errorf("String() = %q, want Formats:Code", code.String())
	}

	if !def.Format("Normal Text").IsDefaultTextStyle() {
		t.Error("Normal Text should use the default text style")
	}
}

func TestFoldingRegion(t *testing.T) {
	begin := NewFoldingRegion(7, FoldingRegionBegin)
	if !begin.IsValid() {
		t.Error("IsValid() = false, want true")
	}
	end := begin.Sibling()
	if end.Type() != FoldingRegionEnd || end.ID() != 7 {
		t.Errorf("Sibling() = %v, want end(7)", end)
	}
	if end.Sibling() != begin {
		t.Errorf("Sibling().Sibling() = %v, want %v", end.Sibling(), begin)
	}
	if (FoldingRegion{}).IsValid() {
		t.Error("zero FoldingRegion should be invalid")
	}
	if begin.String() != "begin(7)" {
		t.Errorf("String() = %q, want begin(7)", begin.String())
	}
}

func TestWordDelimiters(t *testing.T) {
	d := newWordDelimiters()
	for _, r := range " .(\t" {
		if !d.contains(r) {
			t.Errorf("contains(%q) = false, want true", r)
		}
	}
	for _, r := range "a_1é" {
		if d.contains(r) {
			t.Errorf("contains(%q) = true, want false", r)
		}
	}
	// non-ASCII white space
	if !d.contains('\u00a0') {
		t.Error("contains(NBSP) = false, want true")
	}

	c := d.clone()
	c.remove(". ")
	c.add("é_")
	if c.contains('.') || c.contains(' ') {
		t.Error("removed delimiters still present")
	}
	if !c.contains('é') || !c.contains('_') {
		t.Error("added delimiters missing")
	}
	if !d.contains('.') || d.contains('é') {
		t.Error("clone modified the original")
	}
}
