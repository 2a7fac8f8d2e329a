package spirv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionEncode(t *testing.T) {
	inst := NewInstruction(OpTypeInt, 4, 32, 0)
	words := inst.Encode()

	require.Len(t, words, 4)
	assert.Equal(t, uint32(4)<<16|uint32(OpTypeInt), words[0])
	assert.Equal(t, []uint32{4, 32, 0}, words[1:])
}

func TestInstructionEncodeNoOperands(t *testing.T) {
	words := NewInstruction(OpReturn).Encode()
	require.Len(t, words, 1)
	assert.Equal(t, uint32(1)<<16|uint32(OpReturn), words[0])
}

func TestStringRoundTrip(t *testing.T) {
	// Lengths straddling word boundaries: the terminator of a string
	// with length ≡ 3 (mod 4) lands exactly on the boundary.
	tests := []string{"", "a", "abc", "abcd", "counters", "basic_block_trace_buffer"}
	for _, s := range tests {
		t.Run("len_"+s, func(t *testing.T) {
			words := packString(s)
			assert.Equal(t, (len(s)+1+3)/4, len(words))

			got, n := unpackString(words, 0)
			assert.Equal(t, s, got)
			assert.Equal(t, len(words), n)
		})
	}
}

func TestUnpackStringWithTrailingOperands(t *testing.T) {
	words := append(packString("main"), 7, 9)
	got, n := unpackString(words, 0)
	assert.Equal(t, "main", got)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint32{7, 9}, words[n:])
}
