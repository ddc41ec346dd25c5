// Package interchange builds the orchestral-interchange part list from the
// common score tree, reconstructing instrument groupings and multi-staff
// parts.
package interchange

// PartListItem is either a *PartGroup marker or a *ScorePart.
type PartListItem interface {
	partListItem()
}

// PartList is the ordered part declaration of a score.
type PartList struct {
	Items []PartListItem `json:"items"`
}

// GroupType marks the two ends of a part group.
type GroupType string

const (
	GroupStart GroupType = "start"
	GroupStop  GroupType = "stop"
)

// PartGroup wraps a run of score parts. Start and stop markers share a
// number.
type PartGroup struct {
	Number       int       `json:"number"`
	Type         GroupType `json:"type"`
	Symbol       string    `json:"symbol,omitempty"` // brace, bracket, line
	GroupBarline bool      `json:"group_barline,omitempty"`
	Name         string    `json:"name,omitempty"`
	Abbreviation string    `json:"abbreviation,omitempty"`
}

// ScorePart declares one part.
type ScorePart struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	StaffCount   int    `json:"staff_count"` // 1 unless multi-staff
}

func (*PartGroup) partListItem() {}
func (*ScorePart) partListItem() {}

// ScoreParts returns the score parts of the list in order.
func (pl *PartList) ScoreParts() []*ScorePart {
	var parts []*ScorePart
	for _, item := range pl.Items {
		if sp, ok := item.(*ScorePart); ok {
			parts = append(parts, sp)
		}
	}
	return parts
}
