package spirv

// Module represents a SPIR-V module as mutable instruction sections,
// ordered per the SPIR-V logical layout.
type Module struct {
	Version   Version
	Generator uint32

	Capabilities   []Instruction // OpCapability
	Extensions     []Instruction // OpExtension
	ExtImports     []Instruction // OpExtInstImport
	MemoryModel    *Instruction  // OpMemoryModel
	EntryPoints    []EntryPoint
	ExecutionModes []Instruction // OpExecutionMode
	Debug          []Instruction // OpSource*, OpString, OpName, OpMemberName
	Annotations    []Instruction // OpDecorate, OpMemberDecorate
	TypesValues    []Instruction // OpType*, OpConstant*, module-scope OpVariable
	Functions      []*Function

	// nextID is the next unallocated result id; the encoded id bound.
	nextID uint32
}

// EntryPoint represents an OpEntryPoint in structured form.
type EntryPoint struct {
	Model     ExecutionModel
	Function  ID
	Name      string
	Interface []ID
}

// Function is an ordered sequence of basic blocks bracketed by
// OpFunction and OpFunctionEnd. A function with a body has at least one
// block; SPIR-V forbids empty ones.
type Function struct {
	Def    Instruction // OpFunction
	Params []Instruction
	Blocks []*Block
}

// ID returns the function's result id.
func (f *Function) ID() ID {
	if len(f.Def.Words) < 2 {
		return 0
	}
	return ID(f.Def.Words[1])
}

// Block is a basic block: an OpLabel followed by body instructions up
// to and including the terminator.
type Block struct {
	Label Instruction // OpLabel
	Body  []Instruction
}

// LabelID returns the block's label result id. The second result is
// false when the label carries no id, which a well-formed module never
// produces.
func (b *Block) LabelID() (ID, bool) {
	if len(b.Label.Words) < 1 || b.Label.Words[0] == 0 {
		return 0, false
	}
	return ID(b.Label.Words[0]), true
}

// NewModule creates an empty module targeting the given version.
func NewModule(version Version) *Module {
	return &Module{
		Version:   version,
		Generator: GeneratorID,
		nextID:    1,
	}
}

// AllocID allocates a fresh module-unique result id.
func (m *Module) AllocID() ID {
	id := ID(m.nextID)
	m.nextID++
	return id
}

// Bound returns the module's id bound (max allocated id + 1).
func (m *Module) Bound() uint32 {
	return m.nextID
}

// HasCapability reports whether the capability is already declared.
func (m *Module) HasCapability(c Capability) bool {
	for _, inst := range m.Capabilities {
		if len(inst.Words) >= 1 && Capability(inst.Words[0]) == c {
			return true
		}
	}
	return false
}

// AddCapability declares a capability.
func (m *Module) AddCapability(c Capability) {
	m.Capabilities = append(m.Capabilities, NewInstruction(OpCapability, uint32(c)))
}

// HasExtension reports whether the named extension is already declared.
func (m *Module) HasExtension(name string) bool {
	for _, inst := range m.Extensions {
		s, _ := unpackString(inst.Words, 0)
		if s == name {
			return true
		}
	}
	return false
}

// AddExtension declares an extension.
func (m *Module) AddExtension(name string) {
	m.Extensions = append(m.Extensions, Instruction{Opcode: OpExtension, Words: packString(name)})
}

// SetMemoryModel sets the module's addressing and memory model.
func (m *Module) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	inst := NewInstruction(OpMemoryModel, uint32(addressing), uint32(memory))
	m.MemoryModel = &inst
}

// AddName attaches a debug name to an id.
func (m *Module) AddName(id ID, name string) {
	words := append([]uint32{uint32(id)}, packString(name)...)
	m.Debug = append(m.Debug, Instruction{Opcode: OpName, Words: words})
}

// AddMemberName attaches a debug name to a struct member.
func (m *Module) AddMemberName(structID ID, member uint32, name string) {
	words := append([]uint32{uint32(structID), member}, packString(name)...)
	m.Debug = append(m.Debug, Instruction{Opcode: OpMemberName, Words: words})
}

// AddDecoration decorates an id.
func (m *Module) AddDecoration(id ID, decoration Decoration, params ...uint32) {
	words := append([]uint32{uint32(id), uint32(decoration)}, params...)
	m.Annotations = append(m.Annotations, Instruction{Opcode: OpDecorate, Words: words})
}

// AddMemberDecoration decorates a struct member.
func (m *Module) AddMemberDecoration(structID ID, member uint32, decoration Decoration, params ...uint32) {
	words := append([]uint32{uint32(structID), member, uint32(decoration)}, params...)
	m.Annotations = append(m.Annotations, Instruction{Opcode: OpMemberDecorate, Words: words})
}

// AddGlobal allocates a module-scope OpVariable of the given pointer
// type and storage class, returning its id.
func (m *Module) AddGlobal(pointerType ID, storageClass StorageClass) ID {
	id := m.AllocID()
	m.TypesValues = append(m.TypesValues,
		NewInstruction(OpVariable, uint32(pointerType), uint32(id), uint32(storageClass)))
	return id
}

// FunctionByID returns the function with the given result id, or nil.
func (m *Module) FunctionByID(id ID) *Function {
	for _, f := range m.Functions {
		if f.ID() == id {
			return f
		}
	}
	return nil
}
