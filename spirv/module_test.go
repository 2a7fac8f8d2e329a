package spirv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocID(t *testing.T) {
	m := NewModule(Version1_3)
	a := m.AllocID()
	b := m.AllocID()

	assert.Equal(t, ID(1), a)
	assert.Equal(t, ID(2), b)
	assert.Equal(t, uint32(3), m.Bound())
}

func TestCapabilityQueries(t *testing.T) {
	m := NewModule(Version1_3)
	assert.False(t, m.HasCapability(CapabilityInt64))

	m.AddCapability(CapabilityInt64)
	assert.True(t, m.HasCapability(CapabilityInt64))
	assert.False(t, m.HasCapability(CapabilityInt64Atomics))
}

func TestExtensionQueries(t *testing.T) {
	m := NewModule(Version1_3)
	const ext = "SPV_KHR_storage_buffer_storage_class"
	assert.False(t, m.HasExtension(ext))

	m.AddExtension(ext)
	assert.True(t, m.HasExtension(ext))
	assert.False(t, m.HasExtension("SPV_KHR_shader_clock"))
}

func TestAddGlobal(t *testing.T) {
	m := NewModule(Version1_3)
	ptrType := m.AllocID()

	id := m.AddGlobal(ptrType, StorageClassStorageBuffer)

	require.Len(t, m.TypesValues, 1)
	inst := m.TypesValues[0]
	assert.Equal(t, OpVariable, inst.Opcode)
	assert.Equal(t, []uint32{uint32(ptrType), uint32(id), uint32(StorageClassStorageBuffer)}, inst.Words)
}

func TestDebugNames(t *testing.T) {
	m := NewModule(Version1_3)
	m.AddName(7, "counters")
	m.AddMemberName(7, 0, "counters")

	require.Len(t, m.Debug, 2)
	assert.Equal(t, OpName, m.Debug[0].Opcode)
	assert.Equal(t, OpMemberName, m.Debug[1].Opcode)

	name, _ := unpackString(m.Debug[0].Words, 1)
	assert.Equal(t, "counters", name)
}

func TestBlockLabelID(t *testing.T) {
	b := &Block{Label: NewInstruction(OpLabel, 42)}
	id, ok := b.LabelID()
	assert.True(t, ok)
	assert.Equal(t, ID(42), id)

	b = &Block{Label: NewInstruction(OpLabel)}
	_, ok = b.LabelID()
	assert.False(t, ok)
}

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		v    Version
		want bool
	}{
		{Version1_0, false},
		{Version1_3, false},
		{Version1_4, true},
		{Version1_6, true},
		{Version{2, 0}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.AtLeast(1, 4), "version %d.%d", tt.v.Major, tt.v.Minor)
	}
}
