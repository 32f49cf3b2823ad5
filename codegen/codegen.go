package codegen

import (
	"fmt"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/errors"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "codegen")

// EntryName is the function the program's result is returned from.
const EntryName = "main"

// state is threaded through one emission. Every named binding and temporary
// lives in an entry-block stack slot; registers only carry loaded values and
// the results of single instructions.
type state struct {
	a     *ast.Arena
	fn    *ir.Func
	entry *ir.Block
	cur   *ir.Block

	slots map[ast.VarID]*ir.InstAlloca

	regs int
	seq  int
}

func (s *state) next() int {
	s.seq++
	return s.seq - 1
}

// slot allocates a stack slot in the entry block.
func (s *state) slot(name string) *ir.InstAlloca {
	alloca := s.entry.NewAlloca(Int)
	alloca.SetName(fmt.Sprintf("%s.%d", name, s.next()))
	return alloca
}

// reg names the value an instruction produces.
func (s *state) reg(inst value.Named) {
	inst.SetName(fmt.Sprintf("r%d", s.regs))
	s.regs++
}

func (s *state) load(slot *ir.InstAlloca) value.Value {
	inst := s.cur.NewLoad(Int, slot)
	s.reg(inst)
	return inst
}

func (s *state) widen(cond value.Value) value.Value {
	inst := s.cur.NewZExt(cond, Int)
	s.reg(inst)
	return inst
}

func (s *state) emit(id ast.NodeID) value.Value {
	return ast.Dispatch[value.Value](s.a, id, s)
}

// operand emits id for use by an instruction. Literals and freshly loaded
// registers are used directly; anything else goes through a temporary slot
// and is loaded back.
func (s *state) operand(id ast.NodeID) value.Value {
	v := s.emit(id)
	switch v.(type) {
	case constant.Constant, *ir.InstLoad:
		return v
	}
	tmp := s.slot("tmp")
	s.cur.NewStore(v, tmp)
	return s.load(tmp)
}

func (s *state) VisitValue(id ast.NodeID) value.Value {
	panic(errors.Internalf("unresolved value %s reached code generation", ast.Print(s.a, id)))
}

func (s *state) VisitLiteral(id ast.NodeID) value.Value {
	return integer(s.a.Node(id).Int)
}

func (s *state) VisitReference(id ast.NodeID) value.Value {
	v := s.a.VariableOf(id)
	if v == nil {
		panic(errors.Internalf("unresolved reference %s", s.a.Node(id).Name))
	}
	if v.IsFunction() {
		return s.call(id, v)
	}
	slot, ok := s.slots[v.ID]
	if !ok {
		panic(errors.Internalf("no stack slot for %s", v.Name))
	}
	return s.load(slot)
}

// call expands the function body in place. Arguments are evaluated first,
// then stored into fresh slots for the parameters.
func (s *state) call(id ast.NodeID, fn *ast.Variable) value.Value {
	args := s.a.Children(s.a.Args(id))
	if len(args) != len(fn.Params) {
		panic(errors.Internalf("call to %s has %d arguments for %d parameters", fn.Name, len(args), len(fn.Params)))
	}

	values := make([]value.Value, len(args))
	for i, arg := range args {
		values[i] = s.emit(arg)
	}

	saved := make(map[ast.VarID]*ir.InstAlloca, len(fn.Params))
	for i, param := range fn.Params {
		if old, ok := s.slots[param]; ok {
			saved[param] = old
		}
		slot := s.slot(s.a.Variable(param).Name)
		s.cur.NewStore(values[i], slot)
		s.slots[param] = slot
	}

	result := s.emit(s.a.BoundValue(fn.Decl))

	for _, param := range fn.Params {
		if old, ok := saved[param]; ok {
			s.slots[param] = old
		} else {
			delete(s.slots, param)
		}
	}
	return result
}

func (s *state) VisitUnaryOp(id ast.NodeID) value.Value {
	n := s.a.Node(id)
	right := s.operand(s.a.Right(id))

	switch n.Op {
	case ast.OpNeg:
		inst := s.cur.NewSub(integer(0), right)
		s.reg(inst)
		return inst
	case ast.OpNot:
		cmp := s.cur.NewICmp(enum.IPredEQ, right, integer(0))
		s.reg(cmp)
		return s.widen(cmp)
	}
	panic(errors.Internalf("no instruction for unary operator %s", n.Op))
}

var predicates = map[ast.Operator]enum.IPred{
	ast.OpLess:      enum.IPredSLT,
	ast.OpLessEq:    enum.IPredSLE,
	ast.OpGreater:   enum.IPredSGT,
	ast.OpGreaterEq: enum.IPredSGE,
	ast.OpEq:        enum.IPredEQ,
	ast.OpNotEq:     enum.IPredNE,
}

// truth compares v against zero.
func (s *state) truth(v value.Value) value.Value {
	cmp := s.cur.NewICmp(enum.IPredNE, v, integer(0))
	s.reg(cmp)
	return cmp
}

func (s *state) VisitBinaryOp(id ast.NodeID) value.Value {
	n := s.a.Node(id)
	if n.Op == ast.OpIsa {
		return integer(0)
	}

	left := s.operand(s.a.Left(id))
	right := s.operand(s.a.Right(id))

	if pred, ok := predicates[n.Op]; ok {
		cmp := s.cur.NewICmp(pred, left, right)
		s.reg(cmp)
		return s.widen(cmp)
	}

	var inst value.Named
	switch n.Op {
	case ast.OpMul:
		inst = s.cur.NewMul(left, right)
	case ast.OpDiv:
		inst = s.cur.NewSDiv(left, right)
	case ast.OpRem:
		inst = s.cur.NewSRem(left, right)
	case ast.OpAdd:
		inst = s.cur.NewAdd(left, right)
	case ast.OpSub:
		inst = s.cur.NewSub(left, right)
	case ast.OpAnd, ast.OpOr:
		l, r := s.truth(left), s.truth(right)
		if n.Op == ast.OpAnd {
			inst = s.cur.NewAnd(l, r)
		} else {
			inst = s.cur.NewOr(l, r)
		}
		s.reg(inst)
		return s.widen(inst)
	default:
		panic(errors.Internalf("no instruction for binary operator %s", n.Op))
	}
	s.reg(inst)
	return inst
}

// VisitBlock emits the statements in order. Function bindings emit nothing
// here; their bodies are expanded where they are called.
func (s *state) VisitBlock(id ast.NodeID) value.Value {
	var result value.Value = integer(0)
	for _, stmt := range s.a.Children(id) {
		switch s.a.Kind(stmt) {
		case ast.KindAssignment:
			s.VisitAssignment(stmt)
		case ast.KindTypeDefinition:
		default:
			result = s.emit(stmt)
		}
	}
	return result
}

func (s *state) VisitAssignment(id ast.NodeID) value.Value {
	v := s.a.VariableOf(id)
	bound := s.a.BoundValue(id)
	if v.IsFunction() || bound == ast.NoNode {
		return integer(0)
	}

	result := s.emit(bound)
	slot := s.slot(v.Name)
	s.cur.NewStore(result, slot)
	s.slots[v.ID] = slot
	return integer(0)
}

func (s *state) VisitParameter(id ast.NodeID) value.Value {
	panic(errors.Internalf("parameter %s emitted as a value", s.a.Node(id).Name))
}

func (s *state) VisitArgumentList(id ast.NodeID) value.Value {
	panic(errors.Internalf("tuple %s emitted as a value", ast.Print(s.a, id)))
}

// VisitIf stores each branch's value into a shared slot, so the continuation
// block reads the result back with a load.
func (s *state) VisitIf(id ast.NodeID) value.Value {
	n := s.next()
	cond := s.slot("tmp")
	condValue := s.emit(s.a.Cond(id))
	s.cur.NewStore(condValue, cond)
	test := s.truth(s.load(cond))

	result := s.slot("tmp")
	then := s.fn.NewBlock(fmt.Sprintf("then.%d", n))
	els := s.fn.NewBlock(fmt.Sprintf("else.%d", n))
	cont := s.fn.NewBlock(fmt.Sprintf("ifcont.%d", n))
	s.cur.NewCondBr(test, then, els)

	s.cur = then
	thenValue := s.emit(s.a.Then(id))
	s.cur.NewStore(thenValue, result)
	s.cur.NewBr(cont)

	s.cur = els
	var elseValue value.Value = integer(0)
	if branch := s.a.Else(id); branch != ast.NoNode {
		elseValue = s.emit(branch)
	}
	s.cur.NewStore(elseValue, result)
	s.cur.NewBr(cont)

	s.cur = cont
	return s.load(result)
}

func (s *state) VisitTypeDefinition(id ast.NodeID) value.Value {
	return integer(0)
}

func (s *state) VisitVoid(id ast.NodeID) value.Value {
	return integer(0)
}

// Generate emits the checked tree as a module with one entry function
// returning the program's value.
func Generate(a *ast.Arena) (m *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(errors.InternalError); ok {
				err = tracerr.Wrap(e)
				return
			}
			panic(r)
		}
	}()

	m = ir.NewModule()
	fn := m.NewFunc(EntryName, Int)
	entry := fn.NewBlock("entry")

	s := &state{
		a:     a,
		fn:    fn,
		entry: entry,
		cur:   entry,
		slots: map[ast.VarID]*ir.InstAlloca{},
	}

	ret := s.slot("retval")
	var result value.Value = integer(0)
	if a.Root != ast.NoNode {
		result = s.emit(a.Root)
	}
	s.cur.NewStore(result, ret)
	s.cur.NewRet(s.load(ret))

	plog.Debugf("emitted %d blocks using %d registers", len(fn.Blocks), s.regs)
	return m, nil
}

// Lines splits the module's assembly into lines, without the trailing
// empty one.
func Lines(m *ir.Module) []string {
	return strings.Split(strings.TrimRight(m.String(), "\n"), "\n")
}
