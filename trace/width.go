package trace

import "github.com/gogpu/spvtrace/spirv"

// CounterWidth selects the element width of the counter array, fixed
// when the pass is constructed.
type CounterWidth uint8

// Supported counter widths
const (
	// Counter32 traces with 32-bit counters. Cheap, but long-running
	// workloads can wrap.
	Counter32 CounterWidth = iota

	// Counter64 traces with 64-bit counters. Requires the Int64 and
	// Int64Atomics capabilities on the target.
	Counter64
)

// Bits returns the counter element width in bits.
func (w CounterWidth) Bits() uint32 {
	if w == Counter64 {
		return 64
	}
	return 32
}

// Stride returns the counter array stride in bytes.
func (w CounterWidth) Stride() uint32 {
	return w.Bits() / 8
}

// capabilities returns the capabilities the width requires beyond the
// module's baseline. Empty for 32-bit counters.
func (w CounterWidth) capabilities() []spirv.Capability {
	if w == Counter64 {
		return []spirv.Capability{spirv.CapabilityInt64, spirv.CapabilityInt64Atomics}
	}
	return nil
}

func (w CounterWidth) String() string {
	if w == Counter64 {
		return "u64"
	}
	return "u32"
}
