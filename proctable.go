package main

import "fmt"

// ProcEntry is a compiled procedure waiting to be placed in the image.
type ProcEntry struct {
	Name   string
	Addr   int  // absolute address of the first instruction
	Code   Code // body, stack cleanup and RTN
	Locals int  // consts and vars declared directly in the body block
}

// ProcTable collects compiled procedures in the order their lowering
// completes and assigns each one its final address.
//
// Procedure code is laid out after the entry jump at address 0, so the
// first registered procedure lands at address 1.
type ProcTable struct {
	entries []*ProcEntry
	byName  map[string]*ProcEntry
	next    int
	drained bool
}

func NewProcTable() *ProcTable {
	return &ProcTable{
		byName: make(map[string]*ProcEntry),
		next:   1,
	}
}

// Store registers a procedure body. It appends the stack cleanup for the
// procedure's locals and the return, and assigns the entry the address
// following everything stored so far.
func (pt *ProcTable) Store(name string, body Code, locals int) (*ProcEntry, error) {
	if pt.drained {
		return nil, fmt.Errorf("procedure table already drained, cannot store %q", name)
	}
	if _, exists := pt.byName[name]; exists {
		return nil, fmt.Errorf("procedure '%s' already declared", name)
	}

	code := body
	if locals > 0 {
		code = Concat(code, codeInc(-locals))
	}
	code = Concat(code, codeRtn())

	entry := &ProcEntry{
		Name:   name,
		Addr:   pt.next,
		Code:   code,
		Locals: locals,
	}
	pt.next += code.Len()
	pt.entries = append(pt.entries, entry)
	pt.byName[name] = entry
	return entry, nil
}

// Lookup returns the entry for name, or nil.
func (pt *ProcTable) Lookup(name string) *ProcEntry {
	return pt.byName[name]
}

// Addr returns the address assigned to name.
func (pt *ProcTable) Addr(name string) (int, bool) {
	entry := pt.byName[name]
	if entry == nil {
		return 0, false
	}
	return entry.Addr, true
}

func (pt *ProcTable) Len() int {
	return len(pt.entries)
}

// Entries returns the entries in registration order.
func (pt *ProcTable) Entries() []*ProcEntry {
	return append([]*ProcEntry(nil), pt.entries...)
}

// Drain concatenates all procedure code in registration order. It may be
// called once; afterwards the table accepts no more procedures.
func (pt *ProcTable) Drain() (Code, error) {
	if pt.drained {
		return Code{}, fmt.Errorf("procedure table already drained")
	}
	pt.drained = true

	parts := make([]Code, 0, len(pt.entries))
	for _, entry := range pt.entries {
		parts = append(parts, entry.Code)
	}
	return Concat(parts...), nil
}
