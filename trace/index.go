package trace

import (
	"fmt"

	"github.com/gogpu/spvtrace/spirv"
)

// blockIndex assigns each reachable basic block a dense trace index in
// call-tree visitation order. Built once per run; read-only afterward.
type blockIndex struct {
	byLabel map[spirv.ID]int
}

// indexBlocks walks every function reachable from the module's entry
// points and numbers their blocks from zero.
func indexBlocks(m *spirv.Module) (*blockIndex, error) {
	idx := &blockIndex{byLabel: make(map[spirv.ID]int)}

	_, err := m.ForEachReachableFunction(func(f *spirv.Function) (bool, error) {
		for _, b := range f.Blocks {
			labelID, ok := b.LabelID()
			if !ok {
				return false, fmt.Errorf("%w: block without label id in function %%%d",
					ErrMalformedModule, f.ID())
			}
			idx.byLabel[labelID] = len(idx.byLabel)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// count returns the number of indexed blocks.
func (idx *blockIndex) count() int {
	return len(idx.byLabel)
}

// mapping returns a snapshot copy of the label-to-index map, safe for
// observers to retain.
func (idx *blockIndex) mapping() map[spirv.ID]int {
	out := make(map[spirv.ID]int, len(idx.byLabel))
	for label, i := range idx.byLabel {
		out[label] = i
	}
	return out
}
