package main

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

// machine is a reference interpreter for compiled listings. It exists to
// check the code generator's output by running it.
type machine struct {
	code   []Instr
	stack  []int
	pc     int
	bp     int
	input  []int
	output strings.Builder
	steps  int
}

const machineStepLimit = 1_000_000

func newMachine(code Code, input string) (*machine, error) {
	m := &machine{code: code.Instrs()}
	for _, field := range strings.Fields(input) {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("bad input %q: %w", field, err)
		}
		m.input = append(m.input, n)
	}
	return m, nil
}

func (m *machine) push(v int) {
	m.stack = append(m.stack, v)
}

func (m *machine) pop() (int, error) {
	if len(m.stack) == 0 {
		return 0, fmt.Errorf("pc %d: stack underflow", m.pc)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *machine) cell(addr int) (*int, error) {
	if addr < 0 || addr >= len(m.stack) {
		return nil, fmt.Errorf("pc %d: address %d out of range (stack size %d)", m.pc, addr, len(m.stack))
	}
	return &m.stack[addr], nil
}

func (m *machine) run() error {
	for {
		if m.steps++; m.steps > machineStepLimit {
			return fmt.Errorf("step limit exceeded")
		}
		if m.pc < 0 || m.pc >= len(m.code) {
			return fmt.Errorf("pc %d out of range", m.pc)
		}
		instr := m.code[m.pc]
		if instr.Label != nil {
			return fmt.Errorf("pc %d: unfixed label %s", m.pc, instr.Label)
		}
		next := m.pc + 1

		switch instr.Op {
		case NOP:
		case HLT:
			return nil
		case LIT:
			m.push(instr.Arg)
		case INC:
			if instr.Arg >= 0 {
				for i := 0; i < instr.Arg; i++ {
					m.push(0)
				}
			} else {
				if len(m.stack)+instr.Arg < m.bp {
					return fmt.Errorf("pc %d: INC %d shrinks below frame", m.pc, instr.Arg)
				}
				m.stack = m.stack[:len(m.stack)+instr.Arg]
			}
		case PBP:
			m.push(m.bp)
		case LOD:
			a, err := m.pop()
			if err != nil {
				return err
			}
			c, err := m.cell(a + instr.Arg)
			if err != nil {
				return err
			}
			m.push(*c)
		case STO:
			v, err := m.pop()
			if err != nil {
				return err
			}
			a, err := m.pop()
			if err != nil {
				return err
			}
			c, err := m.cell(a + instr.Arg)
			if err != nil {
				return err
			}
			*c = v
		case JMP:
			next = m.pc + instr.Arg
		case JPC:
			v, err := m.pop()
			if err != nil {
				return err
			}
			if v != 0 {
				next = m.pc + instr.Arg
			}
		case CAL:
			sl := m.bp
			for i := 0; i < instr.Levels; i++ {
				c, err := m.cell(sl)
				if err != nil {
					return err
				}
				sl = *c
			}
			m.push(sl)
			m.push(m.bp)
			m.push(m.pc + 1)
			m.bp = len(m.stack) - FrameHeaderSize
			next = instr.Arg
		case RTN:
			if len(m.stack) != m.bp+FrameHeaderSize {
				return fmt.Errorf("pc %d: RTN with %d cells above frame header", m.pc, len(m.stack)-m.bp-FrameHeaderSize)
			}
			next = m.stack[m.bp+2]
			dl := m.stack[m.bp+1]
			m.stack = m.stack[:m.bp]
			m.bp = dl
		case CHO:
			v, err := m.pop()
			if err != nil {
				return err
			}
			fmt.Fprintf(&m.output, "%d\n", v)
		case CHI:
			if len(m.input) == 0 {
				return fmt.Errorf("pc %d: input exhausted", m.pc)
			}
			m.push(m.input[0])
			m.input = m.input[1:]
		default:
			b, err := m.pop()
			if err != nil {
				return err
			}
			a, err := m.pop()
			if err != nil {
				return err
			}
			v, err := binaryOp(instr.Op, a, b)
			if err != nil {
				return fmt.Errorf("pc %d: %w", m.pc, err)
			}
			m.push(v)
		}
		m.pc = next
	}
}

func binaryOp(op Opcode, a, b int) (int, error) {
	switch op {
	case ADD:
		return a + b, nil
	case SUB:
		return a - b, nil
	case MUL:
		return a * b, nil
	case DIV, MOD:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		if op == DIV {
			return a / b, nil
		}
		return a % b, nil
	case EQL:
		return boolInt(a == b), nil
	case NEQ:
		return boolInt(a != b), nil
	case LSS:
		return boolInt(a < b), nil
	case LEQ:
		return boolInt(a <= b), nil
	case GTR:
		return boolInt(a > b), nil
	case GEQ:
		return boolInt(a >= b), nil
	default:
		return 0, fmt.Errorf("unknown opcode %s", op)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// executeCode runs a fixed listing and returns what it printed.
func executeCode(t *testing.T, code Code, input string) string {
	t.Helper()
	m, err := newMachine(code, input)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.run(); err != nil {
		t.Fatalf("execution failed: %v\n%s", err, code)
	}
	return m.output.String()
}

// compileAndExecute compiles an s-expression program and runs it.
func compileAndExecute(t *testing.T, source string, input string) string {
	t.Helper()
	prog, err := ParseSExprProgram(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	code, err := Compile(prog)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return executeCode(t, code, input)
}
