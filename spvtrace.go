// Package spvtrace instruments compiled SPIR-V shader modules with
// per-basic-block execution counters.
//
// Each reachable basic block gets an atomic increment of a dedicated
// slot in a storage-buffer counter array, bound at descriptor set 5,
// binding 1. Reading that buffer back after execution yields an
// execution-frequency trace without altering program semantics.
//
// Example usage:
//
//	data, _ := os.ReadFile("shader.spv")
//	out, report, err := spvtrace.Instrument(data, spvtrace.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// report.BlockCount sizes the readback buffer; report.Mapping
//	// relates original block labels to counter slots.
//
// For finer control, use the trace and spirv packages directly:
//
//	module, _ := spirv.Decode(data)
//	pass := trace.New(trace.Counter64)
//	changed, err := pass.Run(module)
package spvtrace

import (
	"fmt"

	"github.com/gogpu/spvtrace/spirv"
	"github.com/gogpu/spvtrace/trace"
)

// Options configures instrumentation.
type Options struct {
	// Width is the counter element width (default: 32-bit).
	Width trace.CounterWidth
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Width: trace.Counter32,
	}
}

// Report describes the instrumentation layout of one module, captured
// before the module was mutated.
type Report struct {
	// BlockCount is the total number of reachable basic blocks, and
	// therefore the number of counter slots the readback buffer needs.
	BlockCount int

	// Mapping relates each original block label id to its counter slot.
	Mapping map[spirv.ID]int

	// Changed reports whether any block was actually instrumented.
	Changed bool
}

// Instrument decodes a SPIR-V binary, instruments every reachable basic
// block with an execution counter, and re-encodes it.
func Instrument(data []byte, opts Options) ([]byte, *Report, error) {
	module, err := spirv.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode error: %w", err)
	}

	report := &Report{}
	pass := trace.New(opts.Width)
	pass.OnBlockCount(func(count int) { report.BlockCount = count })
	pass.OnBlockMapping(func(mapping map[spirv.ID]int) { report.Mapping = mapping })

	changed, err := pass.Run(module)
	if err != nil {
		return nil, nil, fmt.Errorf("instrumentation error: %w", err)
	}
	report.Changed = changed

	return module.Encode(), report, nil
}
