package score

import (
	"fmt"
	"strings"
)

// ValidationResult contains the outcome of tree validation.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

// ValidationError describes a specific validation issue.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Element string `json:"element,omitempty"` // affected element ID
	Fix     string `json:"fix,omitempty"`     // suggested fix
}

// Validate checks structural invariants of a document: unique element
// identities, resolvable span references, staff groups with at least one
// child, and in-range durations.
func Validate(doc *Document) ValidationResult {
	v := &validator{ids: make(map[string]bool)}

	if doc.ScoreDef != nil && doc.ScoreDef.StaffGrp != nil {
		v.collectStaffGrp(doc.ScoreDef.StaffGrp)
	}
	if doc.Section != nil {
		for _, staff := range doc.Section.Staves {
			for _, layer := range staff.Layers {
				for _, child := range layer.Children {
					v.collectLayerChild(child)
				}
			}
		}
		for _, span := range doc.Section.ControlEvents {
			v.checkSpan(span)
		}
	}

	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	ids      map[string]bool
	errors   []ValidationError
	warnings []ValidationError
}

func (v *validator) addError(code, message, element, fix string) {
	v.errors = append(v.errors, ValidationError{Code: code, Message: message, Element: element, Fix: fix})
}

func (v *validator) addWarning(code, message, element string) {
	v.warnings = append(v.warnings, ValidationError{Code: code, Message: message, Element: element})
}

func (v *validator) recordID(id string) {
	if id == "" {
		return
	}
	if v.ids[id] {
		v.addError("duplicate-id",
			fmt.Sprintf("identity %q assigned to more than one element", id),
			id, "regenerate element identities")
		return
	}
	v.ids[id] = true
}

func (v *validator) collectStaffGrp(grp *StaffGrp) {
	v.recordID(grp.XMLID)
	if len(grp.Children) == 0 {
		v.addError("empty-staff-group", "staff group has no children", grp.XMLID,
			"add a staff definition or remove the group")
	}
	for _, child := range grp.Children {
		switch c := child.(type) {
		case *StaffGrp:
			v.collectStaffGrp(c)
		case *StaffDef:
			v.recordID(c.XMLID)
			if c.N < 0 {
				v.addError("bad-staff-number",
					fmt.Sprintf("staff number %d is negative", c.N), c.XMLID, "")
			}
		}
	}
}

func (v *validator) collectLayerChild(child LayerChild) {
	switch c := child.(type) {
	case *Note:
		v.recordID(c.XMLID)
		v.checkDur(c.XMLID, c.Dur)
	case *Chord:
		v.recordID(c.XMLID)
		v.checkDur(c.XMLID, c.Dur)
		for _, n := range c.Notes {
			v.recordID(n.XMLID)
		}
	case *Rest:
		v.recordID(c.XMLID)
		v.checkDur(c.XMLID, c.Dur)
	case *Space:
		v.recordID(c.XMLID)
		v.checkDur(c.XMLID, c.Dur)
	case *BTrem:
		v.recordID(c.XMLID)
		v.collectLayerChild(c.Child)
	}
}

func (v *validator) checkDur(id string, dur int) {
	switch dur {
	case 0, 1, 2, 4, 8, 16, 32, 64, 128:
	default:
		v.addError("bad-duration",
			fmt.Sprintf("duration %d is not a power-of-two note value", dur),
			id, "use one of 1 2 4 8 16 32 64 128")
	}
}

func (v *validator) checkSpan(span ControlSpan) {
	startID, endID := span.SpanIDs()
	v.checkRef(startID)
	v.checkRef(endID)
}

func (v *validator) checkRef(ref string) {
	if ref == "" {
		return
	}
	id := strings.TrimPrefix(ref, "#")
	if !v.ids[id] {
		v.addError("dangling-reference",
			fmt.Sprintf("span references %q but no such element exists", ref),
			id, "")
	}
}
