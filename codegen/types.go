package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

var (
	// Int is the machine type of every Let value.
	Int = types.I64
	// Bool is what comparisons produce before they are widened to Int.
	Bool = types.I1
)

func integer(v int64) *constant.Int {
	return constant.NewInt(Int, v)
}
