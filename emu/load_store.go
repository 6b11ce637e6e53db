package emu

// DataPort is an optional memory hierarchy level placed between the
// load/store unit and Memory, such as a data cache. Addresses passed to a
// DataPort have already been bounds-checked against Memory.
type DataPort interface {
	// Load reads size bytes (1 or 4), little-endian.
	Load(addr uint32, size int) uint32
	// Store writes the low size bytes of value.
	Store(addr uint32, size int, value uint32)
	// Flush writes every buffered change back to Memory.
	Flush()
}

// LoadStoreUnit implements Z32 loads, stores and the stack.
//
// The stack is full-descending and addressed by R15: PUSH decrements SP by
// 4 and then stores, POP loads and then increments SP by 4.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
	port    DataPort
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory. port may be nil.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, port DataPort) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
		port:    port,
	}
}

// EffectiveAddress computes base register + offset, modulo 2^32.
func (lsu *LoadStoreUnit) EffectiveAddress(rs1 uint8, offset int32) uint32 {
	return lsu.regFile.ReadReg(rs1) + uint32(offset)
}

func (lsu *LoadStoreUnit) load(addr uint32, size int) (uint32, error) {
	if err := lsu.memory.Check(addr, size); err != nil {
		return 0, err
	}
	if lsu.port != nil {
		return lsu.port.Load(addr, size), nil
	}
	if size == 1 {
		v, err := lsu.memory.Read8(addr)
		return uint32(v), err
	}
	return lsu.memory.Read32(addr)
}

func (lsu *LoadStoreUnit) store(addr uint32, size int, value uint32) error {
	if err := lsu.memory.Check(addr, size); err != nil {
		return err
	}
	if lsu.port != nil {
		lsu.port.Store(addr, size, value)
		return nil
	}
	if size == 1 {
		return lsu.memory.Write8(addr, uint8(value))
	}
	return lsu.memory.Write32(addr, value)
}

// Fetch reads the instruction word at addr.
func (lsu *LoadStoreUnit) Fetch(addr uint32) (uint32, error) {
	return lsu.load(addr, 4)
}

// LD performs a word load: rd = mem32[rs1 + offset]
func (lsu *LoadStoreUnit) LD(rd, rs1 uint8, offset int32) error {
	value, err := lsu.load(lsu.EffectiveAddress(rs1, offset), 4)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// LDB loads a byte with zero extension: rd = zero_extend(mem8[rs1 + offset])
func (lsu *LoadStoreUnit) LDB(rd, rs1 uint8, offset int32) error {
	value, err := lsu.load(lsu.EffectiveAddress(rs1, offset), 1)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// ST performs a word store: mem32[rs1 + offset] = rd
func (lsu *LoadStoreUnit) ST(rd, rs1 uint8, offset int32) error {
	return lsu.store(lsu.EffectiveAddress(rs1, offset), 4, lsu.regFile.ReadReg(rd))
}

// STB stores a byte: mem8[rs1 + offset] = rd[7:0]
func (lsu *LoadStoreUnit) STB(rd, rs1 uint8, offset int32) error {
	return lsu.store(lsu.EffectiveAddress(rs1, offset), 1, lsu.regFile.ReadReg(rd)&0xFF)
}

// Push stores value at SP-4 and then lowers SP. SP is left unchanged if
// the store faults.
func (lsu *LoadStoreUnit) Push(value uint32) error {
	sp := lsu.regFile.SP() - 4
	if err := lsu.store(sp, 4, value); err != nil {
		return err
	}
	lsu.regFile.SetSP(sp)
	return nil
}

// Pop loads the word at SP and then raises SP by 4. SP is left unchanged
// if the load faults.
func (lsu *LoadStoreUnit) Pop() (uint32, error) {
	sp := lsu.regFile.SP()
	value, err := lsu.load(sp, 4)
	if err != nil {
		return 0, err
	}
	lsu.regFile.SetSP(sp + 4)
	return value, nil
}

// PUSH pushes register rs1.
func (lsu *LoadStoreUnit) PUSH(rs1 uint8) error {
	return lsu.Push(lsu.regFile.ReadReg(rs1))
}

// POP pops into register rd. The SP update happens before the register
// write, so POP r15 loads SP from the stack.
func (lsu *LoadStoreUnit) POP(rd uint8) error {
	value, err := lsu.Pop()
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// Flush writes back any data held by the data port.
func (lsu *LoadStoreUnit) Flush() {
	if lsu.port != nil {
		lsu.port.Flush()
	}
}
