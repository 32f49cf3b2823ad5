package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/check"
	"github.com/pontaoski/letgo/lexer"
	"github.com/pontaoski/letgo/parser"
)

func generate(t *testing.T, optimize bool, lines ...string) []string {
	t.Helper()
	tokens, err := lexer.Lex(lines, "test.let")
	require.NoError(t, err)
	a, err := parser.Parse(lexer.Normalize(tokens))
	require.NoError(t, err)
	require.NoError(t, check.Check(a, optimize))

	m, err := Generate(a)
	require.NoError(t, err)
	return Lines(m)
}

// machine runs the subset of instructions Generate emits.
type machine struct {
	regs   map[value.Value]int64
	memory map[value.Value]int64
	steps  int
}

func (m *machine) operand(t *testing.T, v value.Value) int64 {
	switch v := v.(type) {
	case *constant.Int:
		return v.X.Int64()
	}
	r, ok := m.regs[v]
	require.True(t, ok, "use of %s before definition", v.Ident())
	return r
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (m *machine) compare(pred enum.IPred, x, y int64) int64 {
	switch pred {
	case enum.IPredEQ:
		return truth(x == y)
	case enum.IPredNE:
		return truth(x != y)
	case enum.IPredSLT:
		return truth(x < y)
	case enum.IPredSLE:
		return truth(x <= y)
	case enum.IPredSGT:
		return truth(x > y)
	case enum.IPredSGE:
		return truth(x >= y)
	}
	panic(fmt.Sprintf("unexpected predicate %s", pred))
}

func (m *machine) exec(t *testing.T, inst ir.Instruction) {
	switch inst := inst.(type) {
	case *ir.InstAlloca:
		m.memory[inst] = 0
	case *ir.InstStore:
		_, ok := m.memory[inst.Dst]
		require.True(t, ok, "store to unallocated %s", inst.Dst.Ident())
		m.memory[inst.Dst] = m.operand(t, inst.Src)
	case *ir.InstLoad:
		v, ok := m.memory[inst.Src]
		require.True(t, ok, "load from unallocated %s", inst.Src.Ident())
		m.regs[inst] = v
	case *ir.InstAdd:
		m.regs[inst] = m.operand(t, inst.X) + m.operand(t, inst.Y)
	case *ir.InstSub:
		m.regs[inst] = m.operand(t, inst.X) - m.operand(t, inst.Y)
	case *ir.InstMul:
		m.regs[inst] = m.operand(t, inst.X) * m.operand(t, inst.Y)
	case *ir.InstSDiv:
		m.regs[inst] = m.operand(t, inst.X) / m.operand(t, inst.Y)
	case *ir.InstSRem:
		m.regs[inst] = m.operand(t, inst.X) % m.operand(t, inst.Y)
	case *ir.InstAnd:
		m.regs[inst] = m.operand(t, inst.X) & m.operand(t, inst.Y)
	case *ir.InstOr:
		m.regs[inst] = m.operand(t, inst.X) | m.operand(t, inst.Y)
	case *ir.InstICmp:
		m.regs[inst] = m.compare(inst.Pred, m.operand(t, inst.X), m.operand(t, inst.Y))
	case *ir.InstZExt:
		m.regs[inst] = m.operand(t, inst.From)
	default:
		t.Fatalf("unexpected instruction %s", inst.LLString())
	}
}

func target(v interface{}) *ir.Block {
	return v.(*ir.Block)
}

// run re-parses the emitted assembly and executes its entry function.
func run(t *testing.T, lines []string) int64 {
	t.Helper()
	mod, err := asm.ParseString("test.ll", strings.Join(lines, "\n"))
	require.NoError(t, err, strings.Join(lines, "\n"))

	var main *ir.Func
	for _, f := range mod.Funcs {
		if f.Name() == EntryName {
			main = f
		}
	}
	require.NotNil(t, main)

	m := &machine{regs: map[value.Value]int64{}, memory: map[value.Value]int64{}}
	block := main.Blocks[0]
	for {
		for _, inst := range block.Insts {
			m.exec(t, inst)
		}
		m.steps++
		require.Less(t, m.steps, 1000, "runaway control flow")

		switch term := block.Term.(type) {
		case *ir.TermRet:
			return m.operand(t, term.X)
		case *ir.TermBr:
			block = target(term.Target)
		case *ir.TermCondBr:
			if m.operand(t, term.Cond) != 0 {
				block = target(term.TargetTrue)
			} else {
				block = target(term.TargetFalse)
			}
		default:
			t.Fatalf("unexpected terminator %s", term.LLString())
		}
	}
}

var programs = []struct {
	name     string
	input    []string
	expected int64
}{
	{"Negative literal", []string{"-2"}, -2},
	{"Binding", []string{"let foo = 10", "foo"}, 10},
	{"Function", []string{"let negate(num) = -num", "negate(-1)"}, 1},
	{"Not equal", []string{"3 - 6 / 2 <> 1"}, 1},
	{"Comparison", []string{"2 * (3 - 5) >= 0"}, 0},
	{"Truncating division", []string{"let a = -7", "let b = 2", "(a / b) * 10 + a % b"}, -31},
	{"Logic", []string{"let t = 5", "let f = 0", "(t & f) + (t | f) * 2 + !f * 4 + !t"}, 6},
	{"Branches", []string{"let f(c) = if c > 2 { c * 2 } else { c - 1 }", "f(3) + f(1)"}, 6},
	{"Missing else", []string{"let g(c) = if c 5", "g(0) + g(1)"}, 5},
	{"Nested ifs", []string{"let h(x) = if x < 0 { -1 } else if x == 0 0 else 1", "h(-5) * 100 + h(0) * 10 + h(7)"}, -99},
	{"Labeled call", []string{"let sub(a, b) = a - b", "sub(b: 1, a: 10)"}, 9},
	{"Nested calls", []string{"let sq(n) = n * n", "sq(sq(2) + 1)"}, 25},
	{"Shadowing", []string{"let x = 1", "let y = { let x = 2; x * 10 }", "x + y"}, 21},
	{"Function uses outer binding", []string{"let k = 3", "let m(x) = x * k", "m(2) + m(4) + k"}, 21},
	{"isa", []string{"type Shape", "let s = 4", "(s isa Shape) + s"}, 4},
	{"Void result", []string{"()"}, 0},
	{"Fraction", []string{"let a = 2.9", "a * 2"}, 4},
}

func TestGenerateRuns(t *testing.T) {
	for _, optimize := range []bool{false, true} {
		for _, tt := range programs {
			t.Run(fmt.Sprintf("%s/optimize=%v", tt.name, optimize), func(t *testing.T) {
				lines := generate(t, optimize, tt.input...)
				assert.Equal(t, tt.expected, run(t, lines))
			})
		}
	}
}

func TestGenerateShape(t *testing.T) {
	lines := generate(t, true, "-2")
	for len(lines) > 0 && !strings.HasPrefix(lines[0], "define") {
		lines = lines[1:]
	}
	assert.Equal(t, []string{
		"define i64 @main() {",
		"entry:",
		"\t%retval.0 = alloca i64",
		"\tstore i64 -2, i64* %retval.0",
		"\t%r0 = load i64, i64* %retval.0",
		"\tret i64 %r0",
		"}",
	}, lines)
}

func TestGenerateNaming(t *testing.T) {
	text := strings.Join(generate(t, false, "let foo = 10", "if foo > 1 foo else 0"), "\n")

	assert.Contains(t, text, "%foo.1 = alloca i64")
	assert.Contains(t, text, "then.2:")
	assert.Contains(t, text, "else.2:")
	assert.Contains(t, text, "ifcont.2:")
	assert.Contains(t, text, "icmp sgt i64 %r0, 1")
	assert.Contains(t, text, "zext i1")
	assert.Contains(t, text, "br i1")
}

// Every alloca sits in the entry block, including the parameter slots of
// expanded calls inside branches.
func TestGenerateSlots(t *testing.T) {
	lines := generate(t, false, "let f(c) = if c 1 else 2", "f(1) + f(0)")

	block := ""
	for _, line := range lines {
		if strings.HasSuffix(line, ":") {
			block = strings.TrimSuffix(line, ":")
		}
		if strings.Contains(line, "alloca") {
			assert.Equal(t, "entry", block, line)
		}
	}
	assert.Equal(t, int64(3), run(t, lines))
}

func TestGenerateEmptyProgram(t *testing.T) {
	a := ast.NewArena()
	m, err := Generate(a)
	require.NoError(t, err)
	assert.Equal(t, int64(0), run(t, Lines(m)))
}
