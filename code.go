package main

import (
	"fmt"
	"strings"
)

// Opcode identifies a stack machine instruction.
type Opcode byte

// Stack Machine Opcode Constants
const (
	NOP Opcode = iota
	LIT        // push Arg
	RTN        // return from procedure
	CAL        // call Arg (absolute), static link Levels hops out
	INC        // grow (Arg > 0) or shrink (Arg < 0) the stack
	PBP        // push the frame base pointer
	LOD        // pop address a, push stack[a+Arg]
	STO        // pop value v, pop address a, stack[a+Arg] = v
	JMP        // relative jump by Arg
	JPC        // pop; relative jump by Arg if nonzero
	CHO        // pop and print
	CHI        // read and push
	HLT
	ADD
	SUB
	MUL
	DIV
	MOD
	EQL
	NEQ
	LSS
	LEQ
	GTR
	GEQ
)

var opcodeNames = [...]string{
	NOP: "NOP",
	LIT: "LIT",
	RTN: "RTN",
	CAL: "CAL",
	INC: "INC",
	PBP: "PBP",
	LOD: "LOD",
	STO: "STO",
	JMP: "JMP",
	JPC: "JPC",
	CHO: "CHO",
	CHI: "CHI",
	HLT: "HLT",
	ADD: "ADD",
	SUB: "SUB",
	MUL: "MUL",
	DIV: "DIV",
	MOD: "MOD",
	EQL: "EQL",
	NEQ: "NEQ",
	LSS: "LSS",
	LEQ: "LEQ",
	GTR: "GTR",
	GEQ: "GEQ",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// hasArg reports whether op carries an integer operand.
func (op Opcode) hasArg() bool {
	switch op {
	case LIT, CAL, INC, LOD, STO, JMP, JPC:
		return true
	default:
		return false
	}
}

// Instr is a single stack machine instruction.
//
// An instruction holding a Label has no meaningful Arg until FixLabels
// replaces the label with its address.
type Instr struct {
	Op     Opcode
	Arg    int
	Levels int    // CAL only
	Label  *Label // CAL only, until fixed
}

func (i Instr) String() string {
	if !i.Op.hasArg() {
		return i.Op.String()
	}
	if i.Op == CAL {
		if i.Label != nil {
			return fmt.Sprintf("CAL %d %s", i.Levels, i.Label)
		}
		return fmt.Sprintf("CAL %d %d", i.Levels, i.Arg)
	}
	return fmt.Sprintf("%s %d", i.Op, i.Arg)
}

// Code is an ordered instruction sequence.
//
// Code has value semantics: every operation returns a new sequence and
// never writes into the storage of its operands, so a sequence may be
// reused after it has been concatenated.
type Code struct {
	instrs []Instr
}

// Empty returns a sequence with no instructions.
func Empty() Code {
	return Code{}
}

// Single returns a sequence holding only i.
func Single(i Instr) Code {
	return Code{instrs: []Instr{i}}
}

// Concat returns the instructions of each part, in order.
func Concat(parts ...Code) Code {
	n := 0
	for _, p := range parts {
		n += len(p.instrs)
	}
	if n == 0 {
		return Code{}
	}
	instrs := make([]Instr, 0, n)
	for _, p := range parts {
		instrs = append(instrs, p.instrs...)
	}
	return Code{instrs: instrs}
}

// Append returns c followed by i.
func (c Code) Append(i Instr) Code {
	return Concat(c, Single(i))
}

func (c Code) Len() int {
	return len(c.instrs)
}

func (c Code) IsEmpty() bool {
	return len(c.instrs) == 0
}

// At returns the instruction at index i.
func (c Code) At(i int) Instr {
	return c.instrs[i]
}

// Instrs returns a copy of the instructions.
func (c Code) Instrs() []Instr {
	return append([]Instr(nil), c.instrs...)
}

// FixLabels returns a copy of c in which every CAL holding a label
// carries that label's absolute address.
func (c Code) FixLabels() (Code, error) {
	fixed := make([]Instr, len(c.instrs))
	for idx, instr := range c.instrs {
		if instr.Label != nil {
			addr, ok := instr.Label.Addr()
			if !ok {
				return Code{}, fmt.Errorf("%w: %s referenced at address %d", ErrUnresolvedLabel, instr.Label, idx)
			}
			instr.Arg = addr
			instr.Label = nil
		}
		fixed[idx] = instr
	}
	return Code{instrs: fixed}, nil
}

// String renders one instruction per line, prefixed by its address.
func (c Code) String() string {
	var sb strings.Builder
	for addr, instr := range c.instrs {
		fmt.Fprintf(&sb, "%d %s\n", addr, instr)
	}
	return sb.String()
}

// Emit helpers, one per instruction shape.

func codeNop() Code         { return Single(Instr{Op: NOP}) }
func codeLit(n int) Code    { return Single(Instr{Op: LIT, Arg: n}) }
func codeRtn() Code         { return Single(Instr{Op: RTN}) }
func codeInc(n int) Code    { return Single(Instr{Op: INC, Arg: n}) }
func codePbp() Code         { return Single(Instr{Op: PBP}) }
func codeLod(off int) Code  { return Single(Instr{Op: LOD, Arg: off}) }
func codeSto(off int) Code  { return Single(Instr{Op: STO, Arg: off}) }
func codeJmp(rel int) Code  { return Single(Instr{Op: JMP, Arg: rel}) }
func codeJpc(rel int) Code  { return Single(Instr{Op: JPC, Arg: rel}) }
func codeCho() Code         { return Single(Instr{Op: CHO}) }
func codeChi() Code         { return Single(Instr{Op: CHI}) }
func codeHlt() Code         { return Single(Instr{Op: HLT}) }
func codeOp(op Opcode) Code { return Single(Instr{Op: op}) }

func codeCal(levels int, label *Label) Code {
	return Single(Instr{Op: CAL, Levels: levels, Label: label})
}
