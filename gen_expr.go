package main

// genExpr lowers an expression to code leaving exactly one value on the
// stack.
func (c *Compiler) genExpr(expr *ASTNode) Code {
	if expr == nil {
		internalFault(nil, "missing expression")
	}
	switch expr.Kind {
	case NodeNumber:
		return codeLit(int(expr.Integer))
	case NodeIdent:
		use := c.useOf(expr)
		return Concat(computeFramePointer(use.Levels), codeLod(use.Offset))
	case NodeBinary:
		op, ok := arithOpcode(expr.Op)
		if !ok {
			internalFault(expr, "unknown arithmetic operator '%s'", expr.Op)
		}
		expectChildren(expr, 2, 2)
		return Concat(c.genExpr(expr.Children[0]), c.genExpr(expr.Children[1]), codeOp(op))
	default:
		internalFault(expr, "unexpected %s in expression position", expr.Kind)
		return Code{}
	}
}

// genCond lowers a condition. The value left on the stack is only
// meaningful as zero or nonzero; odd leaves the raw remainder.
func (c *Compiler) genCond(cond *ASTNode) Code {
	if cond == nil {
		internalFault(nil, "missing condition")
	}
	switch cond.Kind {
	case NodeOdd:
		expectChildren(cond, 1, 1)
		return Concat(c.genExpr(cond.Children[0]), codeLit(2), codeOp(MOD))
	case NodeCompare:
		op, ok := compareOpcode(cond.Op)
		if !ok {
			internalFault(cond, "unknown relational operator '%s'", cond.Op)
		}
		expectChildren(cond, 2, 2)
		return Concat(c.genExpr(cond.Children[0]), c.genExpr(cond.Children[1]), codeOp(op))
	default:
		internalFault(cond, "unexpected %s in condition position", cond.Kind)
		return Code{}
	}
}

func arithOpcode(op string) (Opcode, bool) {
	switch op {
	case "+":
		return ADD, true
	case "-":
		return SUB, true
	case "*":
		return MUL, true
	case "/":
		return DIV, true
	default:
		return NOP, false
	}
}

func compareOpcode(op string) (Opcode, bool) {
	switch op {
	case "=":
		return EQL, true
	case "<>":
		return NEQ, true
	case "<":
		return LSS, true
	case "<=":
		return LEQ, true
	case ">":
		return GTR, true
	case ">=":
		return GEQ, true
	default:
		return NOP, false
	}
}
