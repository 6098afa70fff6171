package main

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAMLProgram reads a program from its YAML form:
//
//	program:
//	  consts: [{name: c, value: 5}]
//	  vars: [x]
//	  procs: [{name: p, block: {...}}]
//	  body: {begin: [{assign: {target: x, value: {add: [c, 1]}}}, {write: x}]}
//
// Expressions are integers, names, {id: {name, levels, offset}} or a
// single-key mapping from an operator (add, sub, mul, div) to its two
// operands. Conditions are {odd: E} or {eq|neq|lt|le|gt|ge: [E, E]}.
func ParseYAMLProgram(data []byte) (*ASTNode, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	r := &yamlReader{}
	root := doc.Content[0]
	body := r.single(root, "program")
	if r.err != nil {
		return nil, r.err
	}
	prog := r.readBlock(body, NodeProgram)
	if r.err != nil {
		return nil, r.err
	}
	return prog, nil
}

type yamlReader struct {
	err error
}

func yamlPos(n *yaml.Node) Pos {
	return Pos{Line: n.Line, Column: n.Column}
}

func (r *yamlReader) fail(n *yaml.Node, format string, args ...any) {
	if r.err == nil {
		r.err = &CompileError{Pos: yamlPos(n), Message: fmt.Sprintf(format, args...)}
	}
}

func (r *yamlReader) missing(what string) {
	if r.err == nil {
		r.err = fmt.Errorf("missing %s", what)
	}
}

// fields returns the key/value pairs of a mapping node.
func (r *yamlReader) fields(n *yaml.Node) map[string]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		r.fail(n, "expected mapping")
		return nil
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out
}

// single returns the value of a one-key mapping whose key is want.
func (r *yamlReader) single(n *yaml.Node, want string) *yaml.Node {
	key, value := r.tagged(n)
	if r.err == nil && key != want {
		r.fail(n, "expected %s, got %s", want, key)
	}
	return value
}

// tagged splits a one-key mapping into its key and value. A bare scalar is
// a key with no value, so "skip" and {skip: null} read the same.
func (r *yamlReader) tagged(n *yaml.Node) (string, *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		return n.Value, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Line: n.Line, Column: n.Column}
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		r.fail(n, "expected a mapping with exactly one key")
		return "", n
	}
	return n.Content[0].Value, n.Content[1]
}

func (r *yamlReader) seq(n *yaml.Node) []*yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		r.fail(n, "expected sequence")
		return nil
	}
	return n.Content
}

func (r *yamlReader) name(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		if n == nil {
			r.missing("name")
		} else {
			r.fail(n, "expected name")
		}
		return ""
	}
	return n.Value
}

func (r *yamlReader) integer(n *yaml.Node) int64 {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!int" {
		if n == nil {
			r.missing("integer")
		} else {
			r.fail(n, "expected integer")
		}
		return 0
	}
	value, err := strconv.ParseInt(n.Value, 0, 64)
	if err != nil {
		r.fail(n, "%v", err)
	}
	return value
}

func (r *yamlReader) readBlock(n *yaml.Node, kind NodeKind) *ASTNode {
	f := r.fields(n)
	if r.err != nil {
		return nil
	}
	block := &ASTNode{Kind: kind, Pos: yamlPos(n)}
	for _, c := range r.seq(f["consts"]) {
		cf := r.fields(c)
		if r.err != nil {
			return nil
		}
		block.Consts = append(block.Consts, &ASTNode{
			Kind:    NodeConst,
			Pos:     yamlPos(c),
			String:  r.name(cf["name"]),
			Integer: r.integer(cf["value"]),
		})
	}
	for _, v := range r.seq(f["vars"]) {
		block.Vars = append(block.Vars, &ASTNode{Kind: NodeVar, Pos: yamlPos(v), String: r.name(v)})
	}
	for _, p := range r.seq(f["procs"]) {
		pf := r.fields(p)
		if r.err != nil {
			return nil
		}
		if pf["block"] == nil {
			r.fail(p, "procedure has no block")
			return nil
		}
		block.Procs = append(block.Procs, &ASTNode{
			Kind:     NodeProc,
			Pos:      yamlPos(p),
			String:   r.name(pf["name"]),
			Children: []*ASTNode{r.readBlock(pf["block"], NodeBlock)},
		})
	}
	if body := f["body"]; body != nil {
		block.Body = r.readStmt(body)
	} else {
		block.Body = &ASTNode{Kind: NodeSkip, Pos: block.Pos}
	}
	if r.err != nil {
		return nil
	}
	return block
}

// readTarget reads the identifier written by read and assign.
func (r *yamlReader) readTarget(n *yaml.Node) (string, *IdentUse) {
	if n != nil && n.Kind == yaml.MappingNode {
		return r.readResolved(n)
	}
	return r.name(n), nil
}

func (r *yamlReader) readResolved(n *yaml.Node) (string, *IdentUse) {
	f := r.fields(n)
	if r.err != nil {
		return "", nil
	}
	use := &IdentUse{Levels: int(r.integer(f["levels"])), Offset: int(r.integer(f["offset"]))}
	if use.Levels < 0 {
		r.fail(n, "negative lexical distance %d", use.Levels)
	}
	return r.name(f["name"]), use
}

func (r *yamlReader) readStmt(n *yaml.Node) *ASTNode {
	key, value := r.tagged(n)
	if r.err != nil {
		return nil
	}
	node := &ASTNode{Pos: yamlPos(n)}
	switch key {
	case "skip":
		node.Kind = NodeSkip
	case "write":
		node.Kind = NodeWrite
		node.Children = []*ASTNode{r.readExpr(value)}
	case "read":
		node.Kind = NodeRead
		node.String, node.Use = r.readTarget(value)
	case "assign":
		f := r.fields(value)
		if r.err != nil {
			return nil
		}
		node.Kind = NodeAssign
		node.String, node.Use = r.readTarget(f["target"])
		node.Children = []*ASTNode{r.readExpr(f["value"])}
	case "begin":
		node.Kind = NodeBegin
		node.Children = []*ASTNode{}
		for _, s := range r.seq(value) {
			node.Children = append(node.Children, r.readStmt(s))
		}
	case "if":
		f := r.fields(value)
		if r.err != nil {
			return nil
		}
		node.Kind = NodeIf
		node.Children = []*ASTNode{r.readCond(f["cond"]), r.readStmt(r.required(value, f, "then"))}
		if f["else"] != nil {
			node.Children = append(node.Children, r.readStmt(f["else"]))
		}
	case "while":
		f := r.fields(value)
		if r.err != nil {
			return nil
		}
		node.Kind = NodeWhile
		node.Children = []*ASTNode{r.readCond(f["cond"]), r.readStmt(r.required(value, f, "do"))}
	case "call":
		node.Kind = NodeCall
		node.String = r.name(value)
	default:
		r.fail(n, "unknown statement %q", key)
		return nil
	}
	return node
}

func (r *yamlReader) required(parent *yaml.Node, f map[string]*yaml.Node, key string) *yaml.Node {
	if f[key] == nil {
		r.fail(parent, "missing %q", key)
		return parent
	}
	return f[key]
}

// pair reads a two-operand sequence.
func (r *yamlReader) pair(n *yaml.Node) (*ASTNode, *ASTNode) {
	operands := r.seq(n)
	if r.err != nil {
		return nil, nil
	}
	if len(operands) != 2 {
		r.fail(n, "expected 2 operands, got %d", len(operands))
		return nil, nil
	}
	return r.readExpr(operands[0]), r.readExpr(operands[1])
}

func (r *yamlReader) readCond(n *yaml.Node) *ASTNode {
	if n == nil {
		r.missing("condition")
		return nil
	}
	key, value := r.tagged(n)
	if r.err != nil {
		return nil
	}
	if key == "odd" {
		return &ASTNode{Kind: NodeOdd, Pos: yamlPos(n), Children: []*ASTNode{r.readExpr(value)}}
	}
	op, ok := compareOps[key]
	if !ok {
		r.fail(n, "unknown condition %q", key)
		return nil
	}
	left, right := r.pair(value)
	return &ASTNode{Kind: NodeCompare, Pos: yamlPos(n), Op: op, Children: []*ASTNode{left, right}}
}

func (r *yamlReader) readExpr(n *yaml.Node) *ASTNode {
	if n == nil {
		r.missing("expression")
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!int" {
			return &ASTNode{Kind: NodeNumber, Pos: yamlPos(n), Integer: r.integer(n)}
		}
		return &ASTNode{Kind: NodeIdent, Pos: yamlPos(n), String: r.name(n)}
	}
	key, value := r.tagged(n)
	if r.err != nil {
		return nil
	}
	if key == "id" {
		name, use := r.readResolved(value)
		return &ASTNode{Kind: NodeIdent, Pos: yamlPos(n), String: name, Use: use}
	}
	op, ok := arithOps[key]
	if !ok {
		r.fail(n, "unknown operator %q", key)
		return nil
	}
	left, right := r.pair(value)
	return &ASTNode{Kind: NodeBinary, Pos: yamlPos(n), Op: op, Children: []*ASTNode{left, right}}
}
