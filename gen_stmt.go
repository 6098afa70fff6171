package main

// genProcDecls lowers procedure declarations into the procedure table.
// They produce no inline code.
func (c *Compiler) genProcDecls(pds []*ASTNode) {
	for _, pd := range pds {
		c.genProcDecl(pd)
	}
}

// genProcDecl lowers one procedure and resolves its label to the address
// the procedure table assigns. The name is bound before the body is
// lowered so the body can call the procedure itself.
func (c *Compiler) genProcDecl(pd *ASTNode) {
	if pd == nil {
		internalFault(nil, "missing procedure declaration")
	}
	if pd.Kind != NodeProc || len(pd.Children) != 1 {
		internalFault(pd, "expected procedure declaration, got %s", pd.Kind)
	}
	block := pd.Children[0]
	if block == nil {
		internalFault(pd, "procedure '%s' has no block", pd.String)
	}
	locals := block.LocalCount()
	name := c.qualify(pd.String)
	label := NewLabel(name)
	c.bindProc(pd.String, label, locals)

	c.enterScope()
	c.path = append(c.path, pd.String)
	c.genProcDecls(block.Procs)
	body := c.genBlockBody(block)
	c.path = c.path[:len(c.path)-1]
	c.exitScope()

	entry, err := c.procs.Store(name, body, locals)
	if err != nil {
		c.Errors.Add(pd.Pos, "%v", err)
		return
	}
	if err := label.Resolve(entry.Addr); err != nil {
		internalFault(pd, "%v", err)
	}
}

// genBlockBody lowers the storage declarations and the statement of a
// block. Nested procedures are handled separately by genProcDecls.
func (c *Compiler) genBlockBody(block *ASTNode) Code {
	if block == nil {
		internalFault(nil, "missing block")
	}
	return Concat(
		c.genConstDecls(block.Consts),
		c.genVarDecls(block.Vars),
		c.genStmt(block.Body),
	)
}

// genConstDecls pushes each constant's value into its frame slot.
func (c *Compiler) genConstDecls(cds []*ASTNode) Code {
	code := Empty()
	for _, cd := range cds {
		if cd == nil {
			internalFault(nil, "missing constant declaration")
		}
		code = Concat(code, codeLit(int(cd.Integer)))
	}
	return code
}

// genVarDecls reserves one uninitialized slot per variable.
func (c *Compiler) genVarDecls(vds []*ASTNode) Code {
	code := Empty()
	for range vds {
		code = Concat(code, codeInc(1))
	}
	return code
}

func (c *Compiler) genStmt(stmt *ASTNode) Code {
	if stmt == nil {
		internalFault(nil, "missing statement")
	}
	switch stmt.Kind {
	case NodeSkip:
		return codeNop()
	case NodeWrite:
		expectChildren(stmt, 1, 1)
		return Concat(c.genExpr(stmt.Children[0]), codeCho())
	case NodeRead:
		use := c.useOf(stmt)
		return Concat(computeFramePointer(use.Levels), codeChi(), codeSto(use.Offset))
	case NodeAssign:
		return c.genAssignStmt(stmt)
	case NodeBegin:
		return c.genBeginStmt(stmt)
	case NodeIf:
		return c.genIfStmt(stmt)
	case NodeWhile:
		return c.genWhileStmt(stmt)
	case NodeCall:
		return c.genCallStmt(stmt)
	default:
		internalFault(stmt, "unexpected %s in statement position", stmt.Kind)
		return Code{}
	}
}

// genAssignStmt computes the target's frame base before the value, so
// STO finds the value on top and the base beneath it.
func (c *Compiler) genAssignStmt(stmt *ASTNode) Code {
	expectChildren(stmt, 1, 1)
	use := c.useOf(stmt)
	return Concat(
		computeFramePointer(use.Levels),
		c.genExpr(stmt.Children[0]),
		codeSto(use.Offset),
	)
}

func (c *Compiler) genBeginStmt(stmt *ASTNode) Code {
	code := Empty()
	for _, child := range stmt.Children {
		code = Concat(code, c.genStmt(child))
	}
	return code
}

// genIfStmt lowers
//
//	C; JPC 2; JMP len(T)+2; T; JMP len(E)+1; E
//
// JPC skips the jump over the then branch when C holds; the jump after T
// skips the else branch. A missing else branch is empty.
func (c *Compiler) genIfStmt(stmt *ASTNode) Code {
	expectChildren(stmt, 2, 3)
	cond := c.genCond(stmt.Children[0])
	thenCode := c.genStmt(stmt.Children[1])
	elseCode := Empty()
	if len(stmt.Children) > 2 {
		elseCode = c.genStmt(stmt.Children[2])
	}
	return Concat(
		cond,
		codeJpc(2),
		codeJmp(thenCode.Len()+2),
		thenCode,
		codeJmp(elseCode.Len()+1),
		elseCode,
	)
}

// genWhileStmt lowers
//
//	C; JPC 2; JMP len(S)+2; S; JMP -(len(C)+2+len(S))
//
// The closing jump lands on the first instruction of C.
func (c *Compiler) genWhileStmt(stmt *ASTNode) Code {
	expectChildren(stmt, 2, 2)
	cond := c.genCond(stmt.Children[0])
	body := c.genStmt(stmt.Children[1])
	loop := Concat(
		cond,
		codeJpc(2),
		codeJmp(body.Len()+2),
		body,
	)
	return Concat(loop, codeJmp(-loop.Len()))
}

// genCallStmt emits a call through the callee's label. The label may
// still be pending when the callee is the procedure being lowered.
func (c *Compiler) genCallStmt(stmt *ASTNode) Code {
	binding := c.lookupProc(stmt.String)
	if binding == nil {
		c.Errors.Add(stmt.Pos, "undeclared procedure '%s'", stmt.String)
		return Empty()
	}
	return codeCal(c.depth()-binding.depth, binding.label)
}

// useOf returns the scope resolution of an identifier reference.
func (c *Compiler) useOf(node *ASTNode) *IdentUse {
	if node.Use == nil {
		internalFault(node, "identifier '%s' was not resolved by scope checking", node.String)
	}
	return node.Use
}
