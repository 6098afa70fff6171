package main

import "fmt"

// FrameHeaderSize is the number of cells at the start of every activation
// record: static link, dynamic link, return address. Locals follow.
const FrameHeaderSize = 3

// SymbolKind distinguishes what a name denotes.
type SymbolKind int

const (
	SymbolConst SymbolKind = iota
	SymbolVar
	SymbolProc
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolConst:
		return "constant"
	case SymbolVar:
		return "variable"
	case SymbolProc:
		return "procedure"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// Symbol is a declared name.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Depth  int // nesting depth of the declaring block; the program is 0
	Offset int // frame slot, constants and variables only
	Pos    Pos
}

type scope struct {
	symbols    map[string]*Symbol
	nextOffset int
}

// SymbolTable is a stack of block scopes.
type SymbolTable struct {
	scopes []*scope
	Errors ErrorCollection
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// EnterScope opens the scope of a block.
func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, &scope{
		symbols:    make(map[string]*Symbol),
		nextOffset: FrameHeaderSize,
	})
}

// ExitScope closes the innermost scope.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) == 0 {
		panic("ExitScope without matching EnterScope")
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

// Depth is the nesting depth of the innermost scope.
func (st *SymbolTable) Depth() int {
	return len(st.scopes) - 1
}

// Declare adds name to the innermost scope. Constants and variables get
// the next free frame slot.
func (st *SymbolTable) Declare(name string, kind SymbolKind, pos Pos) (*Symbol, error) {
	if len(st.scopes) == 0 {
		panic("Declare outside of any scope")
	}
	current := st.scopes[len(st.scopes)-1]
	if prev, exists := current.symbols[name]; exists {
		return nil, fmt.Errorf("error: %s '%s' already declared", prev.Kind, name)
	}
	sym := &Symbol{Name: name, Kind: kind, Depth: st.Depth(), Pos: pos}
	if kind != SymbolProc {
		sym.Offset = current.nextOffset
		current.nextOffset++
	}
	current.symbols[name] = sym
	return sym, nil
}

// Lookup finds name in the innermost scope declaring it and returns the
// number of scopes crossed to get there.
func (st *SymbolTable) Lookup(name string) (*Symbol, int) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i].symbols[name]; ok {
			return sym, len(st.scopes) - 1 - i
		}
	}
	return nil, -1
}

// BuildSymbolTable resolves every constant and variable reference in prog,
// filling in IdentUse where the tree does not already carry one.
func BuildSymbolTable(prog *ASTNode) *SymbolTable {
	st := NewSymbolTable()
	st.resolveBlock(prog)
	return st
}

// resolveBlock skips missing or short nodes; the code generator reports
// them as internal faults.
func (st *SymbolTable) resolveBlock(block *ASTNode) {
	if block == nil {
		return
	}
	st.EnterScope()
	defer st.ExitScope()

	for _, decl := range block.Consts {
		st.declare(decl, SymbolConst)
	}
	for _, decl := range block.Vars {
		st.declare(decl, SymbolVar)
	}
	for _, decl := range block.Procs {
		st.declare(decl, SymbolProc)
		st.resolveBlock(childAt(decl, 0))
	}
	st.resolveStmt(block.Body)
}

// childAt returns the i'th child of node, or nil if there is none.
func childAt(node *ASTNode, i int) *ASTNode {
	if node == nil || i >= len(node.Children) {
		return nil
	}
	return node.Children[i]
}

func (st *SymbolTable) declare(decl *ASTNode, kind SymbolKind) {
	if decl == nil {
		return
	}
	if _, err := st.Declare(decl.String, kind, decl.Pos); err != nil {
		st.Errors.Add(decl.Pos, "%s '%s' already declared in this block", kind, decl.String)
	}
}

// resolveUse fills node.Use for a reference to a constant or variable.
// Writes must target a variable.
func (st *SymbolTable) resolveUse(node *ASTNode, write bool) {
	if node.Use != nil {
		return
	}
	sym, levels := st.Lookup(node.String)
	if sym == nil {
		st.Errors.Add(node.Pos, "undeclared identifier '%s'", node.String)
		return
	}
	if sym.Kind == SymbolProc {
		st.Errors.Add(node.Pos, "procedure '%s' used as a value", node.String)
		return
	}
	if write && sym.Kind != SymbolVar {
		st.Errors.Add(node.Pos, "cannot assign to %s '%s'", sym.Kind, node.String)
		return
	}
	node.Use = &IdentUse{Levels: levels, Offset: sym.Offset}
}

func (st *SymbolTable) resolveStmt(stmt *ASTNode) {
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case NodeRead:
		st.resolveUse(stmt, true)
	case NodeAssign:
		st.resolveUse(stmt, true)
		st.resolveExpr(childAt(stmt, 0))
	case NodeWrite:
		st.resolveExpr(childAt(stmt, 0))
	case NodeBegin:
		for _, child := range stmt.Children {
			st.resolveStmt(child)
		}
	case NodeIf, NodeWhile:
		st.resolveCond(childAt(stmt, 0))
		for i := 1; i < len(stmt.Children); i++ {
			st.resolveStmt(stmt.Children[i])
		}
	case NodeCall:
		st.resolveCall(stmt)
	case NodeSkip:
	default:
		st.Errors.Add(stmt.Pos, "unexpected %s in statement position", stmt.Kind)
	}
}

// resolveCall rejects a call whose innermost binding is a constant or
// variable. Procedure addresses are bound during code generation, which
// also reports names that are not declared at all.
func (st *SymbolTable) resolveCall(stmt *ASTNode) {
	sym, _ := st.Lookup(stmt.String)
	if sym != nil && sym.Kind != SymbolProc {
		st.Errors.Add(stmt.Pos, "'%s' is not a procedure", stmt.String)
	}
}

func (st *SymbolTable) resolveCond(cond *ASTNode) {
	if cond == nil {
		return
	}
	switch cond.Kind {
	case NodeOdd, NodeCompare:
		for _, child := range cond.Children {
			st.resolveExpr(child)
		}
	default:
		st.Errors.Add(cond.Pos, "unexpected %s in condition position", cond.Kind)
	}
}

func (st *SymbolTable) resolveExpr(expr *ASTNode) {
	if expr == nil {
		return
	}
	switch expr.Kind {
	case NodeIdent:
		st.resolveUse(expr, false)
	case NodeBinary:
		st.resolveExpr(childAt(expr, 0))
		st.resolveExpr(childAt(expr, 1))
	case NodeNumber:
	default:
		st.Errors.Add(expr.Pos, "unexpected %s in expression position", expr.Kind)
	}
}
