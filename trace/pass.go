// Package trace instruments SPIR-V modules with per-basic-block
// execution counters.
//
// The pass rewrites every basic block reachable from the module's entry
// points so that executing the block atomically increments a dedicated
// slot of a storage-buffer counter array. Host tooling learns the
// number of counters and the block-to-slot mapping through observer
// hooks fired before the module is mutated, so a readback buffer can be
// sized ahead of execution.
//
//	pass := trace.New(trace.Counter32)
//	pass.OnBlockCount(func(n int) { buf = allocReadback(n) })
//	changed, err := pass.Run(module)
package trace

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/gogpu/spvtrace/spirv"
)

// Counter buffer binding coordinates. Downstream tooling binds the
// readback buffer at these fixed coordinates.
const (
	CounterDescriptorSet = 5
	CounterBinding       = 1
)

// StorageBufferExtension enables the StorageBuffer storage class on
// SPIR-V versions that do not carry it natively.
const StorageBufferExtension = "SPV_KHR_storage_buffer_storage_class"

// ErrMalformedModule reports an input module violating a SPIR-V
// structural rule the pass depends on: a label without a result id, a
// function without blocks, a block with no instructions after its
// label. The transformation must be discarded when Run returns it.
var ErrMalformedModule = errors.New("trace: malformed module")

// Pass instruments a module with basic-block execution counters.
//
// A Pass instance is single-use state for one module: the counter
// resource and index map it builds are cached for the duration of one
// Run and a fresh instance has no memory of a previous run's resource.
// Running the same instance twice would allocate a second buffer.
type Pass struct {
	width CounterWidth

	onBlockCount   func(int)
	onBlockMapping func(map[spirv.ID]int)

	// resource is nil until the counter buffer has been built.
	resource *counterResource
}

// New creates a pass tracing with counters of the given width.
func New(width CounterWidth) *Pass {
	return &Pass{width: width}
}

// OnBlockCount registers an observer for the total reachable-block
// count. It fires exactly once per run, before any mutation.
func (p *Pass) OnBlockCount(fn func(count int)) {
	p.onBlockCount = fn
}

// OnBlockMapping registers an observer for the completed label-to-index
// map. It fires exactly once per run, before any mutation, with a
// snapshot the observer may retain.
func (p *Pass) OnBlockMapping(fn func(mapping map[spirv.ID]int)) {
	p.onBlockMapping = fn
}

// Run instruments the module in place and reports whether any block was
// modified. On error the module is in an unspecified partially-mutated
// state and must be discarded.
func (p *Pass) Run(m *spirv.Module) (bool, error) {
	idx, err := indexBlocks(m)
	if err != nil {
		return false, err
	}
	log.Debugf("trace: indexed %d reachable blocks", idx.count())

	if p.onBlockCount != nil {
		p.onBlockCount(idx.count())
	}
	if p.onBlockMapping != nil {
		p.onBlockMapping(idx.mapping())
	}

	types := spirv.NewTypeManager(m)
	consts := spirv.NewConstantManager(m, types)

	res := p.ensureCounterResource(m, types)

	changed, err := m.ForEachReachableFunction(func(f *spirv.Function) (bool, error) {
		return p.instrumentFunction(m, f, idx, res, consts)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
