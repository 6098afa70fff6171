package main

import (
	"fmt"

	"github.com/strager/pl0gen/sexy"
)

// ParseSExprProgram reads a program written as an s-expression:
//
//	(program (const c 5) (var x) (proc p (block ...)) STATEMENT)
//
// Identifiers are bare symbols, or (id NAME LEVELS OFFSET) when the
// scope resolution is supplied with the tree.
func ParseSExprProgram(input string) (*ASTNode, error) {
	datum, err := sexy.Parse(input)
	if err != nil {
		return nil, err
	}
	r := &sexprReader{}
	prog := r.readBlock(datum, "program")
	if r.err != nil {
		return nil, r.err
	}
	return prog, nil
}

// sexprReader converts sexy nodes into AST nodes. It stops at the first
// malformed form.
type sexprReader struct {
	err error
}

func sexprPos(d *sexy.Node) Pos {
	return Pos{Line: d.Line, Column: d.Column}
}

func (r *sexprReader) fail(d *sexy.Node, format string, args ...any) {
	if r.err == nil {
		r.err = &CompileError{Pos: sexprPos(d), Message: fmt.Sprintf(format, args...)}
	}
}

// expectList checks that d is (head ARGS...) with the given argument count
// range. max < 0 means unbounded.
func (r *sexprReader) expectList(d *sexy.Node, head string, min, max int) bool {
	if d.Type != sexy.NodeList || d.Head() != head {
		r.fail(d, "expected (%s ...), got %s", head, d)
		return false
	}
	n := len(d.Items) - 1
	if n < min || (max >= 0 && n > max) {
		r.fail(d, "wrong number of operands for %s: %d", head, n)
		return false
	}
	return true
}

func (r *sexprReader) readBlock(d *sexy.Node, head string) *ASTNode {
	if !r.expectList(d, head, 0, -1) {
		return nil
	}
	kind := NodeBlock
	if head == "program" {
		kind = NodeProgram
	}
	block := &ASTNode{Kind: kind, Pos: sexprPos(d)}
	for _, item := range d.Items[1:] {
		if r.err != nil {
			return nil
		}
		switch item.Head() {
		case "const":
			block.Consts = append(block.Consts, r.readConst(item))
		case "var":
			block.Vars = append(block.Vars, r.readVar(item))
		case "proc":
			block.Procs = append(block.Procs, r.readProc(item))
		default:
			if block.Body != nil {
				r.fail(item, "%s has more than one statement", head)
				return nil
			}
			block.Body = r.readStmt(item)
		}
	}
	if block.Body == nil {
		block.Body = &ASTNode{Kind: NodeSkip, Pos: block.Pos}
	}
	if r.err != nil {
		return nil
	}
	return block
}

func (r *sexprReader) readName(d *sexy.Node) string {
	if d.Type != sexy.NodeSymbol {
		r.fail(d, "expected name, got %s", d)
		return ""
	}
	return d.Text
}

func (r *sexprReader) readInt(d *sexy.Node) int64 {
	value, err := d.Int()
	if err != nil {
		r.fail(d, "%v", err)
	}
	return value
}

func (r *sexprReader) readConst(d *sexy.Node) *ASTNode {
	if !r.expectList(d, "const", 2, 2) {
		return nil
	}
	return &ASTNode{
		Kind:    NodeConst,
		Pos:     sexprPos(d),
		String:  r.readName(d.Items[1]),
		Integer: r.readInt(d.Items[2]),
	}
}

func (r *sexprReader) readVar(d *sexy.Node) *ASTNode {
	if !r.expectList(d, "var", 1, 1) {
		return nil
	}
	return &ASTNode{Kind: NodeVar, Pos: sexprPos(d), String: r.readName(d.Items[1])}
}

func (r *sexprReader) readProc(d *sexy.Node) *ASTNode {
	if !r.expectList(d, "proc", 2, 2) {
		return nil
	}
	name := r.readName(d.Items[1])
	block := r.readBlock(d.Items[2], "block")
	return &ASTNode{Kind: NodeProc, Pos: sexprPos(d), String: name, Children: []*ASTNode{block}}
}

// readIdent reads NAME or (id NAME LEVELS OFFSET) and returns the name and
// the optional resolution.
func (r *sexprReader) readIdent(d *sexy.Node) (string, *IdentUse) {
	if d.Type == sexy.NodeSymbol {
		return d.Text, nil
	}
	if !r.expectList(d, "id", 3, 3) {
		return "", nil
	}
	name := r.readName(d.Items[1])
	use := &IdentUse{
		Levels: int(r.readInt(d.Items[2])),
		Offset: int(r.readInt(d.Items[3])),
	}
	if use.Levels < 0 {
		r.fail(d.Items[2], "negative lexical distance %d", use.Levels)
	}
	return name, use
}

var stmtArity = map[string][2]int{
	"skip":   {0, 0},
	"write":  {1, 1},
	"read":   {1, 1},
	"assign": {2, 2},
	"begin":  {0, -1},
	"if":     {2, 3},
	"while":  {2, 2},
	"call":   {1, 1},
}

func (r *sexprReader) readStmt(d *sexy.Node) *ASTNode {
	head := d.Head()
	arity, ok := stmtArity[head]
	if !ok {
		r.fail(d, "expected statement, got %s", d)
		return nil
	}
	if !r.expectList(d, head, arity[0], arity[1]) {
		return nil
	}
	node := &ASTNode{Pos: sexprPos(d)}
	args := d.Items[1:]
	switch head {
	case "skip":
		node.Kind = NodeSkip
	case "write":
		node.Kind = NodeWrite
		node.Children = []*ASTNode{r.readExpr(args[0])}
	case "read":
		node.Kind = NodeRead
		node.String, node.Use = r.readIdent(args[0])
	case "assign":
		node.Kind = NodeAssign
		node.String, node.Use = r.readIdent(args[0])
		node.Children = []*ASTNode{r.readExpr(args[1])}
	case "begin":
		node.Kind = NodeBegin
		node.Children = []*ASTNode{}
		for _, arg := range args {
			node.Children = append(node.Children, r.readStmt(arg))
		}
	case "if":
		node.Kind = NodeIf
		node.Children = []*ASTNode{r.readCond(args[0]), r.readStmt(args[1])}
		if len(args) == 3 {
			node.Children = append(node.Children, r.readStmt(args[2]))
		}
	case "while":
		node.Kind = NodeWhile
		node.Children = []*ASTNode{r.readCond(args[0]), r.readStmt(args[1])}
	case "call":
		node.Kind = NodeCall
		node.String = r.readName(args[0])
	}
	return node
}

var compareOps = map[string]string{
	"eq":  "=",
	"neq": "<>",
	"lt":  "<",
	"le":  "<=",
	"gt":  ">",
	"ge":  ">=",
}

var arithOps = map[string]string{
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
}

func (r *sexprReader) readCond(d *sexy.Node) *ASTNode {
	head := d.Head()
	if head == "odd" {
		if !r.expectList(d, head, 1, 1) {
			return nil
		}
		return &ASTNode{Kind: NodeOdd, Pos: sexprPos(d), Children: []*ASTNode{r.readExpr(d.Items[1])}}
	}
	op, ok := compareOps[head]
	if !ok {
		r.fail(d, "expected condition, got %s", d)
		return nil
	}
	if !r.expectList(d, head, 2, 2) {
		return nil
	}
	return &ASTNode{
		Kind:     NodeCompare,
		Pos:      sexprPos(d),
		Op:       op,
		Children: []*ASTNode{r.readExpr(d.Items[1]), r.readExpr(d.Items[2])},
	}
}

func (r *sexprReader) readExpr(d *sexy.Node) *ASTNode {
	switch d.Type {
	case sexy.NodeInteger:
		return &ASTNode{Kind: NodeNumber, Pos: sexprPos(d), Integer: r.readInt(d)}
	case sexy.NodeSymbol:
		return &ASTNode{Kind: NodeIdent, Pos: sexprPos(d), String: d.Text}
	}
	head := d.Head()
	if head == "id" {
		name, use := r.readIdent(d)
		return &ASTNode{Kind: NodeIdent, Pos: sexprPos(d), String: name, Use: use}
	}
	op, ok := arithOps[head]
	if !ok {
		r.fail(d, "expected expression, got %s", d)
		return nil
	}
	if !r.expectList(d, head, 2, 2) {
		return nil
	}
	return &ASTNode{
		Kind:     NodeBinary,
		Pos:      sexprPos(d),
		Op:       op,
		Children: []*ASTNode{r.readExpr(d.Items[1]), r.readExpr(d.Items[2])},
	}
}
