package interchange

import (
	"errors"
	"fmt"

	"github.com/scoreflow-xyz/go-scoreflow/convert"
	"github.com/scoreflow-xyz/go-scoreflow/score"
)

// Error types for the interchange package.
var (
	// ErrNoStaffGroup is returned when the score definition has no staff
	// group to derive parts from.
	ErrNoStaffGroup = errors.New("score definition has no staff group")

	// ErrEmptyGroup is returned when a staff group contains no children.
	ErrEmptyGroup = errors.New("staff group has no children")
)

// ExportParts walks the staff-group tree of a score definition and builds
// the part list. The context receives the id mapping, the per-part staff
// registry, recovered part symbols, and warnings for children with no
// interchange equivalent.
func ExportParts(sd *score.ScoreDef, store *score.ExtensionStore, ctx *convert.Context) (*PartList, error) {
	if sd == nil || sd.StaffGrp == nil {
		return nil, ErrNoStaffGroup
	}
	e := &partExporter{store: store, ctx: ctx, list: &PartList{}}
	if err := e.convertGroupChildren(sd.StaffGrp); err != nil {
		return nil, err
	}
	return e.list, nil
}

type partExporter struct {
	store       *score.ExtensionStore
	ctx         *convert.Context
	list        *PartList
	groupNumber int
}

// convertGroupChildren walks one staff group's children. The group's own
// wrapper, if any, is emitted by the caller.
func (e *partExporter) convertGroupChildren(grp *score.StaffGrp) error {
	if len(grp.Children) == 0 {
		return fmt.Errorf("group %q: %w", grp.XMLID, ErrEmptyGroup)
	}
	for _, child := range grp.Children {
		switch c := child.(type) {
		case *score.StaffDef:
			e.list.Items = append(e.list.Items, e.convertStaffDef(c))

		case *score.StaffGrp:
			if err := e.convertNestedGroup(c); err != nil {
				return err
			}

		default:
			e.ctx.AddWarning(grp.XMLID,
				fmt.Sprintf("staff group child %T has no part-list equivalent, skipped", child))
		}
	}
	return nil
}

func (e *partExporter) convertNestedGroup(grp *score.StaffGrp) error {
	if isMultiStaffPart(grp) {
		e.list.Items = append(e.list.Items, e.convertMultiStaffGroup(grp))
		return nil
	}

	// A bare structural container emits no group markers.
	wrap := grp.Symbol != score.SymbolNone || grp.BarThru || grp.Label != "" || grp.LabelAbbr != ""
	if wrap {
		e.groupNumber++
		number := e.groupNumber
		e.list.Items = append(e.list.Items, &PartGroup{
			Number:       number,
			Type:         GroupStart,
			Symbol:       string(grp.Symbol),
			GroupBarline: grp.BarThru,
			Name:         grp.Label,
			Abbreviation: grp.LabelAbbr,
		})
		if err := e.convertGroupChildren(grp); err != nil {
			return err
		}
		e.list.Items = append(e.list.Items, &PartGroup{Number: number, Type: GroupStop})
		return nil
	}
	return e.convertGroupChildren(grp)
}

// isMultiStaffPart reports whether a nested group is one instrument with
// several staves: bar lines run through the group, it holds two or more
// staff definitions and nothing else, and no staff carries its own label.
// Labels on the staves mean separately named instruments that merely share
// a bracket.
func isMultiStaffPart(grp *score.StaffGrp) bool {
	if !grp.BarThru {
		return false
	}
	staffDefs := 0
	for _, child := range grp.Children {
		switch c := child.(type) {
		case *score.StaffGrp:
			return false
		case *score.StaffDef:
			if c.Label != "" || c.LabelAbbr != "" {
				return false
			}
			staffDefs++
		}
	}
	return staffDefs >= 2
}

// convertMultiStaffGroup collapses a multi-staff group to one part. The
// part takes its identity from the first staff definition; every staff is
// registered under that one part.
func (e *partExporter) convertMultiStaffGroup(grp *score.StaffGrp) *ScorePart {
	var defs []*score.StaffDef
	for _, child := range grp.Children {
		if sd, ok := child.(*score.StaffDef); ok {
			defs = append(defs, sd)
		}
	}

	partID := e.resolvePartID(defs[0])
	for i, sd := range defs {
		e.ctx.RegisterPartStaff(partID, i+1, sd.N)
		if sd.XMLID != "" {
			e.ctx.MapID(sd.XMLID, partID)
		}
	}
	if grp.XMLID != "" {
		e.ctx.MapID(grp.XMLID, partID)
	}
	e.recoverPartSymbol(grp, partID)

	return &ScorePart{
		ID:           partID,
		Name:         grp.Label,
		Abbreviation: grp.LabelAbbr,
		StaffCount:   len(defs),
	}
}

func (e *partExporter) convertStaffDef(sd *score.StaffDef) *ScorePart {
	partID := e.resolvePartID(sd)
	e.ctx.RegisterPartStaff(partID, 1, sd.N)
	if sd.XMLID != "" {
		e.ctx.MapID(sd.XMLID, partID)
	}
	return &ScorePart{
		ID:           partID,
		Name:         sd.Label,
		Abbreviation: sd.LabelAbbr,
		StaffCount:   1,
	}
}

// resolvePartID prefers an existing identity, then the staff number, then
// a generated id.
func (e *partExporter) resolvePartID(sd *score.StaffDef) string {
	if sd.XMLID != "" {
		return sd.XMLID
	}
	if sd.N > 0 {
		return fmt.Sprintf("P%d", sd.N)
	}
	return e.ctx.GenerateID("part")
}

// recoverPartSymbol takes stored symbol detail when present, falling back
// to the bare symbol attribute. The brace default of a collapsed group is
// not worth recording.
func (e *partExporter) recoverPartSymbol(grp *score.StaffGrp, partID string) {
	if info, ok := e.store.PartSymbol(grp.XMLID); ok {
		e.ctx.SetPartSymbol(partID, info.Symbol)
		return
	}
	if grp.Symbol != score.SymbolNone && grp.Symbol != score.SymbolBrace {
		e.ctx.SetPartSymbol(partID, string(grp.Symbol))
	}
}
