package trace

import (
	log "github.com/sirupsen/logrus"

	"github.com/gogpu/spvtrace/spirv"
)

// counterResource holds the ids the inserter needs to address counters:
// the storage-buffer variable and the pointer-to-element type produced
// by the access chain.
//
// The generated declarations, for 32-bit counters:
//
//	OpDecorate %_runtimearr_uint ArrayStride 4
//	OpMemberDecorate %BasicBlockTraceBuffer 0 Offset 0
//	OpDecorate %BasicBlockTraceBuffer Block
//	OpDecorate %basic_block_trace_buffer DescriptorSet 5
//	OpDecorate %basic_block_trace_buffer Binding 1
//	%_runtimearr_uint      = OpTypeRuntimeArray %uint
//	%BasicBlockTraceBuffer = OpTypeStruct %_runtimearr_uint
//	%_ptr_StorageBuffer_BasicBlockTraceBuffer =
//	        OpTypePointer StorageBuffer %BasicBlockTraceBuffer
//	%basic_block_trace_buffer =
//	        OpVariable %_ptr_StorageBuffer_BasicBlockTraceBuffer StorageBuffer
//	%_ptr_StorageBuffer_uint = OpTypePointer StorageBuffer %uint
type counterResource struct {
	// buffer is the storage-buffer variable holding the counter array.
	buffer spirv.ID

	// element is the counter element type (uint32 or uint64).
	element spirv.ID

	// elementPtr is the StorageBuffer pointer-to-element type, the
	// result type of the per-block access chain.
	elementPtr spirv.ID
}

// ensureCounterResource builds the counter buffer on first call and
// returns the cached result afterward; one pass run allocates module
// state at most once.
func (p *Pass) ensureCounterResource(m *spirv.Module, types *spirv.TypeManager) *counterResource {
	if p.resource != nil {
		return p.resource
	}

	element := types.Uint(p.width.Bits())
	array := types.RuntimeArray(element, p.width.Stride())
	buffer := types.Struct(array)

	m.AddDecoration(buffer, spirv.DecorationBlock)
	m.AddMemberDecoration(buffer, 0, spirv.DecorationOffset, 0)

	bufferPtr := types.Pointer(spirv.StorageClassStorageBuffer, buffer)
	variable := m.AddGlobal(bufferPtr, spirv.StorageClassStorageBuffer)

	m.AddName(buffer, "BasicBlockTraceBuffer")
	m.AddMemberName(buffer, 0, "counters")
	m.AddName(variable, "basic_block_trace_buffer")

	m.AddDecoration(variable, spirv.DecorationDescriptorSet, CounterDescriptorSet)
	m.AddDecoration(variable, spirv.DecorationBinding, CounterBinding)

	if !m.HasExtension(StorageBufferExtension) {
		m.AddExtension(StorageBufferExtension)
	}
	for _, c := range p.width.capabilities() {
		if !m.HasCapability(c) {
			m.AddCapability(c)
		}
	}

	// Before version 1.4 the entry-point interface lists only Input and
	// Output variables. From 1.4 on it must name every global the entry
	// point's call tree references, the new buffer included.
	if m.Version.AtLeast(1, 4) {
		for i := range m.EntryPoints {
			m.EntryPoints[i].Interface = append(m.EntryPoints[i].Interface, variable)
		}
	}

	log.Debugf("trace: counter buffer %%%d (%s, set=%d binding=%d)",
		variable, p.width, CounterDescriptorSet, CounterBinding)

	p.resource = &counterResource{
		buffer:     variable,
		element:    element,
		elementPtr: types.Pointer(spirv.StorageClassStorageBuffer, element),
	}
	return p.resource
}
