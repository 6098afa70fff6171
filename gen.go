package main

import (
	"errors"
	"fmt"
	"strings"
)

// procBinding is what a call site needs to know about a procedure.
type procBinding struct {
	label  *Label
	depth  int // depth of the block declaring the procedure
	locals int
}

// Compiler holds the state of one program compilation: the procedure
// table with its address counter, the procedure names in scope, and the
// diagnostics collected so far. Use a new Compiler for every program.
type Compiler struct {
	procs  *ProcTable
	scopes []map[string]*procBinding
	path   []string // enclosing procedure names
	used   bool

	Errors ErrorCollection
}

func NewCompiler() *Compiler {
	return &Compiler{procs: NewProcTable()}
}

// Procs exposes the procedure table, mainly for diagnostics.
func (c *Compiler) Procs() *ProcTable {
	return c.procs
}

func (c *Compiler) enterScope() {
	c.scopes = append(c.scopes, make(map[string]*procBinding))
}

func (c *Compiler) exitScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Compiler) depth() int {
	return len(c.scopes) - 1
}

func (c *Compiler) bindProc(name string, label *Label, locals int) {
	c.scopes[len(c.scopes)-1][name] = &procBinding{label: label, depth: c.depth(), locals: locals}
}

// qualify returns name prefixed by the enclosing procedure names, so that
// procedures nested in different parents get distinct table entries.
// Dots and backslashes inside a name are escaped, so a top-level a.b
// stays distinct from b nested in a.
func (c *Compiler) qualify(name string) string {
	parts := make([]string, 0, len(c.path)+1)
	for _, p := range c.path {
		parts = append(parts, qualifiedNameEscaper.Replace(p))
	}
	parts = append(parts, qualifiedNameEscaper.Replace(name))
	return strings.Join(parts, ".")
}

var qualifiedNameEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`)

func (c *Compiler) lookupProc(name string) *procBinding {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i][name]; ok {
			return b
		}
	}
	return nil
}

// CompileProgram lowers a scope-checked program into a finished
// instruction sequence:
//
//	JMP past procedures   (only if the program declares procedures)
//	procedure bodies      (in the order their lowering completed)
//	INC 3                 (frame header of the main block)
//	main block
//	HLT
//
// and then replaces every label with its address.
func (c *Compiler) CompileProgram(prog *ASTNode) (code Code, err error) {
	if c.used {
		return Code{}, errors.New("compiler already used; create a new Compiler for each program")
	}
	c.used = true
	if prog == nil || prog.Kind != NodeProgram {
		return Code{}, fmt.Errorf("expected %s at the root of the tree", NodeProgram)
	}

	defer func() {
		if r := recover(); r != nil {
			internal, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			code, err = Code{}, internal
		}
	}()

	c.enterScope()
	defer c.exitScope()

	c.genProcDecls(prog.Procs)
	procCode, err := c.procs.Drain()
	if err != nil {
		return Code{}, err
	}
	if len(prog.Procs) > 0 {
		procCode = Concat(codeJmp(procCode.Len()+1), procCode)
	}

	code = Concat(
		procCode,
		codeInc(FrameHeaderSize),
		c.genBlockBody(prog),
		codeHlt(),
	)

	if c.Errors.HasErrors() {
		return Code{}, &c.Errors
	}
	return code.FixLabels()
}

// Compile resolves names in prog and compiles it with a fresh Compiler.
func Compile(prog *ASTNode) (Code, error) {
	st := BuildSymbolTable(prog)
	if st.Errors.HasErrors() {
		return Code{}, &st.Errors
	}
	return NewCompiler().CompileProgram(prog)
}

// computeFramePointer pushes the base address of the frame levels static
// links out from the current one.
func computeFramePointer(levels int) Code {
	code := codePbp()
	for i := 0; i < levels; i++ {
		code = Concat(code, codeLod(0))
	}
	return code
}
