package spirv

import "encoding/binary"

// Encode serializes the module to SPIR-V binary.
func (m *Module) Encode() []byte {
	var words []uint32

	// Header: magic, version, generator, bound, schema
	words = append(words, MagicNumber, versionToWord(m.Version), m.Generator, m.Bound(), 0)

	words = appendInstructions(words, m.Capabilities)
	words = appendInstructions(words, m.Extensions)
	words = appendInstructions(words, m.ExtImports)
	if m.MemoryModel != nil {
		words = append(words, m.MemoryModel.Encode()...)
	}
	for _, entry := range m.EntryPoints {
		words = append(words, entry.encode().Encode()...)
	}
	words = appendInstructions(words, m.ExecutionModes)
	words = appendInstructions(words, m.Debug)
	words = appendInstructions(words, m.Annotations)
	words = appendInstructions(words, m.TypesValues)
	for _, f := range m.Functions {
		words = append(words, f.Def.Encode()...)
		words = appendInstructions(words, f.Params)
		for _, b := range f.Blocks {
			words = append(words, b.Label.Encode()...)
			words = appendInstructions(words, b.Body)
		}
		words = append(words, NewInstruction(OpFunctionEnd).Encode()...)
	}

	buffer := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(buffer[i*4:], word)
	}
	return buffer
}

// encode flattens a structured entry point into an OpEntryPoint
// instruction.
func (e EntryPoint) encode() Instruction {
	words := []uint32{uint32(e.Model), uint32(e.Function)}
	words = append(words, packString(e.Name)...)
	for _, iface := range e.Interface {
		words = append(words, uint32(iface))
	}
	return Instruction{Opcode: OpEntryPoint, Words: words}
}

func appendInstructions(words []uint32, instructions []Instruction) []uint32 {
	for _, inst := range instructions {
		words = append(words, inst.Encode()...)
	}
	return words
}

func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}
