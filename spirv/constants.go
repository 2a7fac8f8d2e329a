package spirv

import "strconv"

// ConstantManager deduplicates unsigned integer constants within one
// module, seeded from the module's existing OpConstant declarations.
type ConstantManager struct {
	m     *Module
	types *TypeManager
	ids   map[string]ID
}

// NewConstantManager creates a constant manager sharing the module's
// type manager.
func NewConstantManager(m *Module, types *TypeManager) *ConstantManager {
	cm := &ConstantManager{
		m:     m,
		types: types,
		ids:   make(map[string]ID, 16),
	}
	cm.indexExisting()
	return cm
}

func (cm *ConstantManager) indexExisting() {
	for _, inst := range cm.m.TypesValues {
		if inst.Opcode != OpConstant || len(inst.Words) < 3 {
			continue
		}
		id := ID(inst.Words[1])
		switch len(inst.Words) {
		case 3:
			cm.ids[constKey(ID(inst.Words[0]), uint64(inst.Words[2]))] = id
		case 4:
			value := uint64(inst.Words[2]) | uint64(inst.Words[3])<<32
			cm.ids[constKey(ID(inst.Words[0]), value)] = id
		}
	}
}

// Uint32 returns the id of the 32-bit unsigned constant with the given
// value, declaring the constant (and its type) if needed.
func (cm *ConstantManager) Uint32(value uint32) ID {
	typeID := cm.types.Uint(32)
	key := constKey(typeID, uint64(value))
	if id, ok := cm.ids[key]; ok {
		return id
	}
	id := cm.m.AllocID()
	cm.m.TypesValues = append(cm.m.TypesValues,
		NewInstruction(OpConstant, uint32(typeID), uint32(id), value))
	cm.ids[key] = id
	return id
}

// Uint64 returns the id of the 64-bit unsigned constant with the given
// value. 64-bit literals occupy two words, low word first.
func (cm *ConstantManager) Uint64(value uint64) ID {
	typeID := cm.types.Uint(64)
	key := constKey(typeID, value)
	if id, ok := cm.ids[key]; ok {
		return id
	}
	id := cm.m.AllocID()
	low := uint32(value & 0xFFFFFFFF)
	high := uint32(value >> 32)
	cm.m.TypesValues = append(cm.m.TypesValues,
		NewInstruction(OpConstant, uint32(typeID), uint32(id), low, high))
	cm.ids[key] = id
	return id
}

func constKey(typeID ID, value uint64) string {
	return "const:" + strconv.FormatUint(uint64(typeID), 10) +
		":" + strconv.FormatUint(value, 10)
}
