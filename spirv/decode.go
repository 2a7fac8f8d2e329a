package spirv

import (
	"encoding/binary"
	"fmt"
)

// Decode parses a SPIR-V binary into a Module.
//
// Instructions are routed to the module's sections by opcode; function
// bodies are grouped into basic blocks at each OpLabel. The decoded
// module's id allocator continues from the binary's id bound.
func Decode(data []byte) (*Module, error) {
	if len(data) < 20 {
		return nil, fmt.Errorf("spirv: binary too small (%d bytes)", len(data))
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("spirv: binary size %d is not word-aligned", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		return nil, fmt.Errorf("spirv: invalid magic 0x%08X", magic)
	}

	versionWord := binary.LittleEndian.Uint32(data[4:8])
	m := &Module{
		Version:   Version{Major: uint8(versionWord >> 16), Minor: uint8(versionWord >> 8)},
		Generator: binary.LittleEndian.Uint32(data[8:12]),
		nextID:    binary.LittleEndian.Uint32(data[12:16]),
	}
	if m.nextID == 0 {
		m.nextID = 1
	}

	var (
		current *Function
		block   *Block
	)

	offset := 20
	for offset < len(data) {
		word := binary.LittleEndian.Uint32(data[offset:])
		opcode := OpCode(word & 0xFFFF)
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount*4 > len(data) {
			return nil, fmt.Errorf("spirv: invalid word count %d at offset 0x%X", wordCount, offset)
		}

		words := make([]uint32, wordCount-1)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(data[offset+4+i*4:])
		}
		inst := Instruction{Opcode: opcode, Words: words}
		offset += wordCount * 4

		if current != nil {
			switch opcode {
			case OpFunctionParameter:
				current.Params = append(current.Params, inst)
			case OpLabel:
				block = &Block{Label: inst}
				current.Blocks = append(current.Blocks, block)
			case OpFunctionEnd:
				m.Functions = append(m.Functions, current)
				current = nil
				block = nil
			default:
				if block == nil {
					return nil, fmt.Errorf("spirv: instruction %d before first label in function %%%d",
						opcode, current.ID())
				}
				block.Body = append(block.Body, inst)
			}
			continue
		}

		switch opcode {
		case OpCapability:
			m.Capabilities = append(m.Capabilities, inst)
		case OpExtension:
			m.Extensions = append(m.Extensions, inst)
		case OpExtInstImport:
			m.ExtImports = append(m.ExtImports, inst)
		case OpMemoryModel:
			m.MemoryModel = &inst
		case OpEntryPoint:
			entry, err := decodeEntryPoint(inst)
			if err != nil {
				return nil, err
			}
			m.EntryPoints = append(m.EntryPoints, entry)
		case OpExecutionMode:
			m.ExecutionModes = append(m.ExecutionModes, inst)
		case OpSource, OpSourceExtension, OpString, OpName, OpMemberName:
			m.Debug = append(m.Debug, inst)
		case OpDecorate, OpMemberDecorate:
			m.Annotations = append(m.Annotations, inst)
		case OpFunction:
			current = &Function{Def: inst}
		default:
			// Types, constants, module-scope variables, and any
			// module-scope instruction this package has no special
			// handling for. Relative order is preserved.
			m.TypesValues = append(m.TypesValues, inst)
		}
	}

	if current != nil {
		return nil, fmt.Errorf("spirv: function %%%d missing OpFunctionEnd", current.ID())
	}
	return m, nil
}

func decodeEntryPoint(inst Instruction) (EntryPoint, error) {
	if len(inst.Words) < 3 {
		return EntryPoint{}, fmt.Errorf("spirv: truncated OpEntryPoint")
	}
	name, nameWords := unpackString(inst.Words, 2)
	entry := EntryPoint{
		Model:    ExecutionModel(inst.Words[0]),
		Function: ID(inst.Words[1]),
		Name:     name,
	}
	for _, word := range inst.Words[2+nameWords:] {
		entry.Interface = append(entry.Interface, ID(word))
	}
	return entry, nil
}
