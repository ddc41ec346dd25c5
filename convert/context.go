// Package convert carries the per-conversion state shared by importers and
// exporters: identity allocation, cross-format identity mapping, staff
// registration, and the warning log. One Context serves exactly one
// conversion call and is discarded with it.
package convert

import "fmt"

// Warning is a non-fatal conversion problem: the construct had no
// equivalent in the target format and was omitted.
type Warning struct {
	Location string
	Message  string
}

func (w Warning) String() string {
	if w.Location == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Location, w.Message)
}

// StaffMapping ties a part's local staff index to the global staff number.
type StaffMapping struct {
	Local  int
	Global int
}

// Context is the mutable single-pass conversion state. It never touches
// the tree or the extension store itself; every operation only updates the
// context's own fields.
type Context struct {
	prefix         string
	counter        int
	suffixCounters map[string]int

	sourceToTarget map[string]string
	targetToSource map[string]string

	partStaves  map[string][]StaffMapping
	partOrder   []string
	partSymbols map[string]string

	warnings []Warning
}

// NewContext creates a context whose generated identities carry the given
// prefix.
func NewContext(prefix string) *Context {
	return &Context{
		prefix:         prefix,
		suffixCounters: make(map[string]int),
		sourceToTarget: make(map[string]string),
		targetToSource: make(map[string]string),
		partStaves:     make(map[string][]StaffMapping),
		partSymbols:    make(map[string]string),
	}
}

// GenerateID returns a fresh identity of the form "<prefix>-<suffix>-<n>".
// The per-suffix counter keeps ids of one kind densely numbered while the
// global counter guarantees uniqueness across kinds.
func (c *Context) GenerateID(suffix string) string {
	c.counter++
	c.suffixCounters[suffix]++
	return fmt.Sprintf("%s-%s-%d", c.prefix, suffix, c.suffixCounters[suffix])
}

// NextSerial returns the next value of the global monotonic counter.
func (c *Context) NextSerial() int {
	c.counter++
	return c.counter
}

// MapID records a source-id to target-id correspondence in both
// directions.
func (c *Context) MapID(sourceID, targetID string) {
	c.sourceToTarget[sourceID] = targetID
	c.targetToSource[targetID] = sourceID
}

// ResolveTarget looks up the target id mapped to a source id.
func (c *Context) ResolveTarget(sourceID string) (string, bool) {
	id, ok := c.sourceToTarget[sourceID]
	return id, ok
}

// ResolveSource looks up the source id mapped to a target id.
func (c *Context) ResolveSource(targetID string) (string, bool) {
	id, ok := c.targetToSource[targetID]
	return id, ok
}

// RegisterPartStaff records that a part's local staff index corresponds to
// the given global staff number.
func (c *Context) RegisterPartStaff(partID string, local, global int) {
	if _, ok := c.partStaves[partID]; !ok {
		c.partOrder = append(c.partOrder, partID)
	}
	c.partStaves[partID] = append(c.partStaves[partID], StaffMapping{Local: local, Global: global})
}

// PartStaves returns the registered staff mappings of a part in
// registration order.
func (c *Context) PartStaves(partID string) []StaffMapping {
	return c.partStaves[partID]
}

// PartIDs returns the registered part ids in first-registration order.
func (c *Context) PartIDs() []string {
	return c.partOrder
}

// SetPartSymbol records the instrument symbol of a part.
func (c *Context) SetPartSymbol(partID, symbol string) {
	c.partSymbols[partID] = symbol
}

// PartSymbol returns the instrument symbol of a part.
func (c *Context) PartSymbol(partID string) (string, bool) {
	sym, ok := c.partSymbols[partID]
	return sym, ok
}

// AddWarning appends a non-fatal problem to the warning log.
func (c *Context) AddWarning(location, message string) {
	c.warnings = append(c.warnings, Warning{Location: location, Message: message})
}

// Warnings returns the accumulated warnings in append order.
func (c *Context) Warnings() []Warning {
	return c.warnings
}
