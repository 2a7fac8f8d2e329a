package spirv

// Instruction represents a single SPIR-V instruction.
//
// Words holds every operand word following the count/opcode word, in
// binary order: for instructions with a result type and result id those
// occupy the leading positions, exactly as in the encoded form.
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// NewInstruction creates an instruction from its operand words.
func NewInstruction(opcode OpCode, words ...uint32) Instruction {
	return Instruction{Opcode: opcode, Words: words}
}

// Encode encodes the instruction to binary words, prepending the
// combined word-count/opcode word.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1)
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	result = append(result, i.Words...)
	return result
}

// packString encodes a string as null-terminated UTF-8 padded to a word
// boundary, the SPIR-V literal-string format.
func packString(s string) []uint32 {
	bytes := []byte(s)
	bytes = append(bytes, 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}

	words := make([]uint32, 0, len(bytes)/4)
	for i := 0; i < len(bytes); i += 4 {
		word := uint32(bytes[i]) |
			uint32(bytes[i+1])<<8 |
			uint32(bytes[i+2])<<16 |
			uint32(bytes[i+3])<<24
		words = append(words, word)
	}
	return words
}

// unpackString decodes a SPIR-V literal string starting at words[offset].
// It returns the string and the number of words it occupied.
func unpackString(words []uint32, offset int) (string, int) {
	var bytes []byte
	n := 0
	for i := offset; i < len(words); i++ {
		word := words[i]
		n++
		terminated := false
		for shift := 0; shift < 32; shift += 8 {
			b := byte(word >> shift)
			if b == 0 {
				terminated = true
				break
			}
			bytes = append(bytes, b)
		}
		if terminated {
			break
		}
	}
	return string(bytes), n
}
