package spvtrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvtrace/spirv"
	"github.com/gogpu/spvtrace/trace"
)

// buildShaderBinary encodes a minimal fragment shader with the given
// number of chained basic blocks.
func buildShaderBinary(t *testing.T, version spirv.Version, numBlocks int) []byte {
	t.Helper()

	m := spirv.NewModule(version)
	m.AddCapability(spirv.CapabilityShader)
	m.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	voidType := m.AllocID()
	m.TypesValues = append(m.TypesValues, spirv.NewInstruction(spirv.OpTypeVoid, uint32(voidType)))
	fnType := m.AllocID()
	m.TypesValues = append(m.TypesValues,
		spirv.NewInstruction(spirv.OpTypeFunction, uint32(fnType), uint32(voidType)))

	fnID := m.AllocID()
	f := &spirv.Function{
		Def: spirv.NewInstruction(spirv.OpFunction, uint32(voidType), uint32(fnID),
			uint32(spirv.FunctionControlNone), uint32(fnType)),
	}
	labels := make([]spirv.ID, numBlocks)
	for i := range labels {
		labels[i] = m.AllocID()
	}
	for i := 0; i < numBlocks; i++ {
		b := &spirv.Block{Label: spirv.NewInstruction(spirv.OpLabel, uint32(labels[i]))}
		if i < numBlocks-1 {
			b.Body = []spirv.Instruction{spirv.NewInstruction(spirv.OpBranch, uint32(labels[i+1]))}
		} else {
			b.Body = []spirv.Instruction{spirv.NewInstruction(spirv.OpReturn)}
		}
		f.Blocks = append(f.Blocks, b)
	}
	m.Functions = append(m.Functions, f)
	m.EntryPoints = append(m.EntryPoints, spirv.EntryPoint{
		Model:    spirv.ExecutionModelFragment,
		Function: f.ID(),
		Name:     "main",
	})

	return m.Encode()
}

func TestInstrument(t *testing.T) {
	data := buildShaderBinary(t, spirv.Version1_3, 3)

	out, report, err := Instrument(data, DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Changed)
	assert.Equal(t, 3, report.BlockCount)
	assert.Len(t, report.Mapping, 3)

	decoded, err := spirv.Decode(out)
	require.NoError(t, err)

	// One atomic increment per block, one storage buffer global.
	atomics := 0
	for _, b := range decoded.Functions[0].Blocks {
		for _, inst := range b.Body {
			if inst.Opcode == spirv.OpAtomicIAdd {
				atomics++
			}
		}
	}
	assert.Equal(t, 3, atomics)

	buffers := 0
	for _, inst := range decoded.TypesValues {
		if inst.Opcode == spirv.OpVariable &&
			spirv.StorageClass(inst.Words[2]) == spirv.StorageClassStorageBuffer {
			buffers++
		}
	}
	assert.Equal(t, 1, buffers)
	assert.True(t, decoded.HasExtension(trace.StorageBufferExtension))
}

func TestInstrument64(t *testing.T) {
	data := buildShaderBinary(t, spirv.Version1_4, 2)

	out, report, err := Instrument(data, Options{Width: trace.Counter64})
	require.NoError(t, err)
	assert.Equal(t, 2, report.BlockCount)

	decoded, err := spirv.Decode(out)
	require.NoError(t, err)
	assert.True(t, decoded.HasCapability(spirv.CapabilityInt64))
	assert.True(t, decoded.HasCapability(spirv.CapabilityInt64Atomics))

	// Version 1.4: the counter buffer joins the entry-point interface.
	require.Len(t, decoded.EntryPoints, 1)
	assert.Len(t, decoded.EntryPoints[0].Interface, 1)
}

func TestInstrumentRejectsGarbage(t *testing.T) {
	_, _, err := Instrument([]byte("not a spirv module"), DefaultOptions())
	assert.Error(t, err)
}
