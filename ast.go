package main

import "strconv"

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeProgram NodeKind = "NodeProgram"
	NodeBlock   NodeKind = "NodeBlock"

	// Declarations
	NodeConst NodeKind = "NodeConst"
	NodeVar   NodeKind = "NodeVar"
	NodeProc  NodeKind = "NodeProc"

	// Statements
	NodeSkip   NodeKind = "NodeSkip"
	NodeWrite  NodeKind = "NodeWrite"
	NodeRead   NodeKind = "NodeRead"
	NodeAssign NodeKind = "NodeAssign"
	NodeBegin  NodeKind = "NodeBegin"
	NodeIf     NodeKind = "NodeIf"
	NodeWhile  NodeKind = "NodeWhile"
	NodeCall   NodeKind = "NodeCall"

	// Conditions
	NodeOdd     NodeKind = "NodeOdd"
	NodeCompare NodeKind = "NodeCompare"

	// Expressions
	NodeBinary NodeKind = "NodeBinary"
	NodeIdent  NodeKind = "NodeIdent"
	NodeNumber NodeKind = "NodeNumber"
)

// ASTNode represents a node in the Abstract Syntax Tree
type ASTNode struct {
	Kind NodeKind
	Pos  Pos
	// NodeConst, NodeVar, NodeProc, NodeRead, NodeAssign, NodeCall, NodeIdent:
	String string
	// NodeNumber, NodeConst:
	Integer int64
	// NodeBinary: "+", "-", "*", "/"
	// NodeCompare: "=", "<>", "<", "<=", ">", ">="
	Op string
	// NodeWrite, NodeOdd: [expr]
	// NodeAssign: [value]
	// NodeBegin: statements
	// NodeIf: [cond, then] or [cond, then, else]
	// NodeWhile: [cond, body]
	// NodeBinary, NodeCompare: [left, right]
	// NodeProc: [block]
	Children []*ASTNode
	// NodeProgram, NodeBlock:
	Consts []*ASTNode
	Vars   []*ASTNode
	Procs  []*ASTNode
	Body   *ASTNode
	// NodeIdent, NodeRead, NodeAssign: filled by scope checking.
	Use *IdentUse
}

// IdentUse is the scope checker's resolution of a constant or variable
// reference.
type IdentUse struct {
	Levels int // enclosing blocks to cross to reach the declaring frame
	Offset int // slot within the declaring frame
}

// LocalCount is the number of storage cells a block declares directly.
func (n *ASTNode) LocalCount() int {
	return len(n.Consts) + len(n.Vars)
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	if node == nil {
		return "(skip)"
	}
	switch node.Kind {
	case NodeProgram, NodeBlock:
		result := "(program"
		if node.Kind == NodeBlock {
			result = "(block"
		}
		for _, decl := range node.Consts {
			result += " " + ToSExpr(decl)
		}
		for _, decl := range node.Vars {
			result += " " + ToSExpr(decl)
		}
		for _, decl := range node.Procs {
			result += " " + ToSExpr(decl)
		}
		return result + " " + ToSExpr(node.Body) + ")"
	case NodeConst:
		return "(const " + node.String + " " + strconv.FormatInt(node.Integer, 10) + ")"
	case NodeVar:
		return "(var " + node.String + ")"
	case NodeProc:
		return "(proc " + node.String + " " + ToSExpr(node.Children[0]) + ")"
	case NodeSkip:
		return "(skip)"
	case NodeWrite:
		return "(write " + ToSExpr(node.Children[0]) + ")"
	case NodeRead:
		return "(read " + identSExpr(node) + ")"
	case NodeAssign:
		return "(assign " + identSExpr(node) + " " + ToSExpr(node.Children[0]) + ")"
	case NodeBegin:
		result := "(begin"
		for _, child := range node.Children {
			result += " " + ToSExpr(child)
		}
		return result + ")"
	case NodeIf:
		result := "(if"
		for _, child := range node.Children {
			result += " " + ToSExpr(child)
		}
		return result + ")"
	case NodeWhile:
		return "(while " + ToSExpr(node.Children[0]) + " " + ToSExpr(node.Children[1]) + ")"
	case NodeCall:
		return "(call " + node.String + ")"
	case NodeOdd:
		return "(odd " + ToSExpr(node.Children[0]) + ")"
	case NodeCompare:
		return "(" + compareSymbols[node.Op] + " " + ToSExpr(node.Children[0]) + " " + ToSExpr(node.Children[1]) + ")"
	case NodeBinary:
		return "(" + arithSymbols[node.Op] + " " + ToSExpr(node.Children[0]) + " " + ToSExpr(node.Children[1]) + ")"
	case NodeIdent:
		return identSExpr(node)
	case NodeNumber:
		return strconv.FormatInt(node.Integer, 10)
	default:
		return ""
	}
}

// identSExpr renders a name, with its resolution when one is attached.
func identSExpr(node *ASTNode) string {
	if node.Use == nil {
		return node.String
	}
	return "(id " + node.String + " " + strconv.Itoa(node.Use.Levels) + " " + strconv.Itoa(node.Use.Offset) + ")"
}

var arithSymbols = map[string]string{
	"+": "add",
	"-": "sub",
	"*": "mul",
	"/": "div",
}

var compareSymbols = map[string]string{
	"=":  "eq",
	"<>": "neq",
	"<":  "lt",
	"<=": "le",
	">":  "gt",
	">=": "ge",
}
