package lilypond

import (
	"fmt"

	"github.com/scoreflow-xyz/go-scoreflow/lilypond/dsl"
)

// event is one entry of the flattened music stream the importer walks.
// Block structure becomes paired start/end markers so the walk itself
// stays iterative; the scope stacks live in the builder.
type event interface {
	importEvent()
}

type noteEvent struct {
	Note *dsl.Note
}

type chordEvent struct {
	Notes      []*dsl.Note
	Duration   *dsl.Duration
	PostEvents []dsl.PostEvent
	// FromRepetition marks a chord expanded from the q shorthand.
	FromRepetition bool
}

type restEvent struct {
	Rest *dsl.Rest
}

type skipEvent struct {
	Skip *dsl.Skip
}

type tupletStartEvent struct {
	Num  int
	Den  int
	Span *dsl.Duration
}

type tupletEndEvent struct{}

type graceStartEvent struct {
	Role     dsl.GraceRole
	Fraction *dsl.Fraction
}

type graceEndEvent struct{}

type repeatStartEvent struct {
	Kind             dsl.RepeatKind
	Count            int
	AlternativeCount int // 0 when no \alternative followed
}

type repeatEndEvent struct{}

type alternativeStartEvent struct {
	Index int
}

type alternativeEndEvent struct{}

type barCheckEvent struct{}

type barLineEvent struct {
	Style string
}

type markupEvent struct {
	Source string
	List   bool
}

func (noteEvent) importEvent()             {}
func (chordEvent) importEvent()            {}
func (restEvent) importEvent()             {}
func (skipEvent) importEvent()             {}
func (tupletStartEvent) importEvent()      {}
func (tupletEndEvent) importEvent()        {}
func (graceStartEvent) importEvent()       {}
func (graceEndEvent) importEvent()         {}
func (repeatStartEvent) importEvent()      {}
func (repeatEndEvent) importEvent()        {}
func (alternativeStartEvent) importEvent() {}
func (alternativeEndEvent) importEvent()   {}
func (barCheckEvent) importEvent()         {}
func (barLineEvent) importEvent()          {}
func (markupEvent) importEvent()           {}

// collector flattens a syntax tree into the event stream, expanding chord
// repetitions eagerly from the most recent literal or expanded chord.
type collector struct {
	events         []event
	lastChordNotes []*dsl.Note
}

func (c *collector) collectSequence(seq *dsl.Sequence) error {
	for _, item := range seq.Items {
		if err := c.collect(item); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) collect(node dsl.Node) error {
	switch n := node.(type) {
	case *dsl.Sequence:
		return c.collectSequence(n)

	case *dsl.Note:
		c.events = append(c.events, noteEvent{Note: n})

	case *dsl.Chord:
		c.lastChordNotes = n.Notes
		c.events = append(c.events, chordEvent{
			Notes:      n.Notes,
			Duration:   n.Duration,
			PostEvents: n.PostEvents,
		})

	case *dsl.ChordRepetition:
		if len(c.lastChordNotes) == 0 {
			return ErrNoPreviousChord
		}
		c.events = append(c.events, chordEvent{
			Notes:          c.lastChordNotes,
			Duration:       n.Duration,
			PostEvents:     n.PostEvents,
			FromRepetition: true,
		})

	case *dsl.Rest:
		c.events = append(c.events, restEvent{Rest: n})

	case *dsl.Skip:
		c.events = append(c.events, skipEvent{Skip: n})

	case *dsl.Tuplet:
		c.events = append(c.events, tupletStartEvent{Num: n.Num, Den: n.Den, Span: n.Span})
		if err := c.collectSequence(n.Body); err != nil {
			return err
		}
		c.events = append(c.events, tupletEndEvent{})

	case *dsl.Grace:
		// The after-grace main note sounds before its grace group and
		// carries no grace role.
		if n.Main != nil {
			if err := c.collect(n.Main); err != nil {
				return err
			}
		}
		c.events = append(c.events, graceStartEvent{Role: n.Role, Fraction: n.Fraction})
		if err := c.collectSequence(n.Body); err != nil {
			return err
		}
		c.events = append(c.events, graceEndEvent{})

	case *dsl.Repeat:
		c.events = append(c.events, repeatStartEvent{
			Kind:             n.Kind,
			Count:            n.Count,
			AlternativeCount: len(n.Alternatives),
		})
		if err := c.collectSequence(n.Body); err != nil {
			return err
		}
		c.events = append(c.events, repeatEndEvent{})
		for i, alt := range n.Alternatives {
			c.events = append(c.events, alternativeStartEvent{Index: i})
			if err := c.collectSequence(alt); err != nil {
				return err
			}
			c.events = append(c.events, alternativeEndEvent{})
		}

	case *dsl.BarCheck:
		c.events = append(c.events, barCheckEvent{})

	case *dsl.BarLine:
		c.events = append(c.events, barLineEvent{Style: n.Style})

	case *dsl.Markup:
		c.events = append(c.events, markupEvent{Source: n.Source})

	case *dsl.MarkupList:
		c.events = append(c.events, markupEvent{Source: n.Source, List: true})

	default:
		return fmt.Errorf("unsupported syntax node %T", node)
	}
	return nil
}
