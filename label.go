package main

import "fmt"

// Label is a code address that is not known when the instructions
// referring to it are generated. It starts pending and is resolved
// exactly once. Any number of instructions may hold it while pending.
type Label struct {
	name string
	addr *int // nil while pending
}

// NewLabel returns a pending label. The name is only used in listings
// and diagnostics.
func NewLabel(name string) *Label {
	return &Label{name: name}
}

// Resolve binds the label to addr.
func (l *Label) Resolve(addr int) error {
	if l.addr != nil {
		return fmt.Errorf("%w: %s already at %d", ErrLabelResolved, l.name, *l.addr)
	}
	l.addr = &addr
	return nil
}

// Addr returns the resolved address, or false if the label is pending.
func (l *Label) Addr() (int, bool) {
	if l.addr == nil {
		return 0, false
	}
	return *l.addr, true
}

func (l *Label) IsResolved() bool {
	return l.addr != nil
}

func (l *Label) Name() string {
	return l.name
}

func (l *Label) String() string {
	return "<" + l.name + ">"
}
