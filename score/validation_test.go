package score

import "testing"

func validDocument() *Document {
	return &Document{
		ScoreDef: &ScoreDef{StaffGrp: &StaffGrp{
			XMLID:    "grp1",
			Children: []StaffGrpChild{&StaffDef{XMLID: "sd1", N: 1, Lines: 5}},
		}},
		Section: &Section{
			Staves: []*Staff{{N: 1, Layers: []*Layer{{N: 1, Children: []LayerChild{
				&Note{XMLID: "n1", Pname: "c", Oct: 3, Dur: 4},
				&Note{XMLID: "n2", Pname: "d", Oct: 3, Dur: 4},
			}}}}},
			ControlEvents: []ControlSpan{
				&Slur{XMLID: "sl1", Ref: SpanRef("#n1", "#n2")},
			},
		},
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	result := Validate(validDocument())
	if !result.Valid {
		t.Fatalf("expected valid, got errors %+v", result.Errors)
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	doc := validDocument()
	doc.Section.Staves[0].Layers[0].Children[1].(*Note).XMLID = "n1"
	doc.Section.ControlEvents = nil

	result := Validate(doc)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if result.Errors[0].Code != "duplicate-id" {
		t.Errorf("expected duplicate-id, got %s", result.Errors[0].Code)
	}
}

func TestValidate_EmptyStaffGroup(t *testing.T) {
	doc := validDocument()
	doc.ScoreDef.StaffGrp.Children = nil

	result := Validate(doc)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, e := range result.Errors {
		if e.Code == "empty-staff-group" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected empty-staff-group error, got %+v", result.Errors)
	}
}

func TestValidate_BadDuration(t *testing.T) {
	doc := validDocument()
	doc.Section.Staves[0].Layers[0].Children[0].(*Note).Dur = 3

	result := Validate(doc)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if result.Errors[0].Code != "bad-duration" {
		t.Errorf("expected bad-duration, got %s", result.Errors[0].Code)
	}
}

func TestValidate_InheritedDurationIsFine(t *testing.T) {
	doc := validDocument()
	doc.Section.Staves[0].Layers[0].Children[0].(*Note).Dur = 0

	if result := Validate(doc); !result.Valid {
		t.Fatalf("zero duration inherits and must validate, got %+v", result.Errors)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	doc := validDocument()
	doc.Section.ControlEvents = []ControlSpan{
		&Slur{XMLID: "sl1", Ref: SpanRef("#n1", "#gone")},
	}

	result := Validate(doc)
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if result.Errors[0].Code != "dangling-reference" {
		t.Errorf("expected dangling-reference, got %s", result.Errors[0].Code)
	}
}

func TestValidate_TremoloWrapperIDs(t *testing.T) {
	doc := validDocument()
	doc.Section.ControlEvents = nil
	doc.Section.Staves[0].Layers[0].Children = []LayerChild{
		&BTrem{XMLID: "bt1", Slash: 2, Child: &Note{XMLID: "n1", Pname: "e", Oct: 3, Dur: 4}},
	}

	if result := Validate(doc); !result.Valid {
		t.Fatalf("expected valid, got %+v", result.Errors)
	}

	doc.Section.Staves[0].Layers[0].Children = append(doc.Section.Staves[0].Layers[0].Children,
		&Note{XMLID: "bt1", Pname: "f", Oct: 3, Dur: 4})
	if result := Validate(doc); result.Valid {
		t.Fatal("wrapper id collision must be invalid")
	}
}
