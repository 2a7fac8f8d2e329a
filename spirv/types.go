package spirv

import "strconv"

// TypeManager ensures type deduplication within one module. SPIR-V
// requires most non-aggregate types to be declared exactly once, so
// find-or-create goes through a structural key index seeded from the
// module's existing declarations.
type TypeManager struct {
	m   *Module
	ids map[string]ID
}

// NewTypeManager creates a type manager indexing the module's existing
// type declarations.
func NewTypeManager(m *Module) *TypeManager {
	tm := &TypeManager{
		m:   m,
		ids: make(map[string]ID, 16),
	}
	tm.indexExisting()
	return tm
}

// indexExisting registers the module's declared types so later
// find-or-create calls reuse them instead of re-declaring.
func (tm *TypeManager) indexExisting() {
	strides := tm.arrayStrides()

	for _, inst := range tm.m.TypesValues {
		switch inst.Opcode {
		case OpTypeInt:
			if len(inst.Words) >= 3 {
				id := ID(inst.Words[0])
				tm.ids[intKey(inst.Words[1], inst.Words[2] != 0)] = id
			}
		case OpTypeRuntimeArray:
			if len(inst.Words) >= 2 {
				id := ID(inst.Words[0])
				tm.ids[runtimeArrayKey(ID(inst.Words[1]), strides[id])] = id
			}
		case OpTypePointer:
			if len(inst.Words) >= 3 {
				id := ID(inst.Words[0])
				tm.ids[pointerKey(StorageClass(inst.Words[1]), ID(inst.Words[2]))] = id
			}
		}
	}
}

// arrayStrides collects ArrayStride decorations, keyed by decorated id.
// Stride is part of an array type's identity even though it lives in
// the annotation section.
func (tm *TypeManager) arrayStrides() map[ID]uint32 {
	strides := make(map[ID]uint32)
	for _, inst := range tm.m.Annotations {
		if inst.Opcode == OpDecorate && len(inst.Words) >= 3 &&
			Decoration(inst.Words[1]) == DecorationArrayStride {
			strides[ID(inst.Words[0])] = inst.Words[2]
		}
	}
	return strides
}

// Uint returns the unsigned integer type of the given bit width,
// declaring it if needed.
func (tm *TypeManager) Uint(width uint32) ID {
	key := intKey(width, false)
	if id, ok := tm.ids[key]; ok {
		return id
	}
	id := tm.m.AllocID()
	tm.m.TypesValues = append(tm.m.TypesValues,
		NewInstruction(OpTypeInt, uint32(id), width, 0))
	tm.ids[key] = id
	return id
}

// RuntimeArray returns a runtime-sized array of the element type with
// the given byte stride, declaring the type and its ArrayStride
// decoration if needed.
func (tm *TypeManager) RuntimeArray(element ID, stride uint32) ID {
	key := runtimeArrayKey(element, stride)
	if id, ok := tm.ids[key]; ok {
		return id
	}
	id := tm.m.AllocID()
	tm.m.TypesValues = append(tm.m.TypesValues,
		NewInstruction(OpTypeRuntimeArray, uint32(id), uint32(element)))
	tm.m.AddDecoration(id, DecorationArrayStride, stride)
	tm.ids[key] = id
	return id
}

// Struct declares a new struct type with the given members.
//
// Struct types are never deduplicated: reusing a structurally equal
// struct that the input module already binds elsewhere would attach
// this caller's decorations to an unrelated resource.
func (tm *TypeManager) Struct(members ...ID) ID {
	id := tm.m.AllocID()
	words := make([]uint32, 0, len(members)+1)
	words = append(words, uint32(id))
	for _, member := range members {
		words = append(words, uint32(member))
	}
	tm.m.TypesValues = append(tm.m.TypesValues, Instruction{Opcode: OpTypeStruct, Words: words})
	return id
}

// Pointer returns the pointer type to base in the given storage class,
// declaring it if needed.
func (tm *TypeManager) Pointer(storageClass StorageClass, base ID) ID {
	key := pointerKey(storageClass, base)
	if id, ok := tm.ids[key]; ok {
		return id
	}
	id := tm.m.AllocID()
	tm.m.TypesValues = append(tm.m.TypesValues,
		NewInstruction(OpTypePointer, uint32(id), uint32(storageClass), uint32(base)))
	tm.ids[key] = id
	return id
}

func intKey(width uint32, signed bool) string {
	key := "int:" + strconv.FormatUint(uint64(width), 10)
	if signed {
		return key + ":s"
	}
	return key + ":u"
}

func runtimeArrayKey(element ID, stride uint32) string {
	return "runarr:" + strconv.FormatUint(uint64(element), 10) +
		":" + strconv.FormatUint(uint64(stride), 10)
}

func pointerKey(storageClass StorageClass, base ID) string {
	return "ptr:" + strconv.FormatUint(uint64(storageClass), 10) +
		":" + strconv.FormatUint(uint64(base), 10)
}
