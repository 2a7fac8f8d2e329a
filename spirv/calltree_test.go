package spirv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addTestFunction appends a one-block void-ish function calling the
// given callees, in order, before its return.
func addTestFunction(m *Module, callees ...ID) *Function {
	fnID := m.AllocID()
	label := m.AllocID()

	block := &Block{Label: NewInstruction(OpLabel, uint32(label))}
	for _, callee := range callees {
		block.Body = append(block.Body,
			NewInstruction(OpFunctionCall, 0, uint32(m.AllocID()), uint32(callee)))
	}
	block.Body = append(block.Body, NewInstruction(OpReturn))

	f := &Function{
		Def:    NewInstruction(OpFunction, 0, uint32(fnID), uint32(FunctionControlNone), 0),
		Blocks: []*Block{block},
	}
	m.Functions = append(m.Functions, f)
	return f
}

func addTestEntryPoint(m *Module, f *Function, name string) {
	m.EntryPoints = append(m.EntryPoints, EntryPoint{
		Model:    ExecutionModelGLCompute,
		Function: f.ID(),
		Name:     name,
	})
}

func visitOrder(t *testing.T, m *Module) []ID {
	t.Helper()
	var order []ID
	_, err := m.ForEachReachableFunction(func(f *Function) (bool, error) {
		order = append(order, f.ID())
		return false, nil
	})
	require.NoError(t, err)
	return order
}

func TestReachableFunctionsBreadthFirst(t *testing.T) {
	m := NewModule(Version1_3)
	leaf := addTestFunction(m)
	mid := addTestFunction(m, leaf.ID())
	root := addTestFunction(m, mid.ID())
	addTestEntryPoint(m, root, "main")

	assert.Equal(t, []ID{root.ID(), mid.ID(), leaf.ID()}, visitOrder(t, m))
}

func TestUnreachableFunctionSkipped(t *testing.T) {
	m := NewModule(Version1_3)
	root := addTestFunction(m)
	orphan := addTestFunction(m)
	addTestEntryPoint(m, root, "main")

	order := visitOrder(t, m)
	assert.Equal(t, []ID{root.ID()}, order)
	assert.NotContains(t, order, orphan.ID())
}

func TestSharedCalleeVisitedOnce(t *testing.T) {
	m := NewModule(Version1_3)
	shared := addTestFunction(m)
	a := addTestFunction(m, shared.ID())
	b := addTestFunction(m, shared.ID())
	root := addTestFunction(m, a.ID(), b.ID())
	addTestEntryPoint(m, root, "main")

	assert.Equal(t, []ID{root.ID(), a.ID(), b.ID(), shared.ID()}, visitOrder(t, m))
}

func TestRecursiveCallTreeTerminates(t *testing.T) {
	m := NewModule(Version1_3)
	// Build a then patch in a call back to itself through b.
	a := addTestFunction(m)
	b := addTestFunction(m, a.ID())
	a.Blocks[0].Body = []Instruction{
		NewInstruction(OpFunctionCall, 0, uint32(m.AllocID()), uint32(b.ID())),
		NewInstruction(OpReturn),
	}
	addTestEntryPoint(m, a, "main")

	assert.Equal(t, []ID{a.ID(), b.ID()}, visitOrder(t, m))
}

func TestMultipleEntryPoints(t *testing.T) {
	m := NewModule(Version1_3)
	f1 := addTestFunction(m)
	f2 := addTestFunction(m)
	addTestEntryPoint(m, f1, "vs_main")
	addTestEntryPoint(m, f2, "fs_main")

	assert.Equal(t, []ID{f1.ID(), f2.ID()}, visitOrder(t, m))
}

func TestModifiedResultFolded(t *testing.T) {
	m := NewModule(Version1_3)
	root := addTestFunction(m, addTestFunction(m).ID())
	addTestEntryPoint(m, root, "main")

	visits := 0
	modified, err := m.ForEachReachableFunction(func(*Function) (bool, error) {
		visits++
		return visits == 2, nil // only the second visitor reports a change
	})
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Equal(t, 2, visits)
}
