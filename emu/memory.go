package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MemorySize is the size of the Z32 address space in bytes.
const MemorySize = 1 << 16

// ErrMemoryFault is returned for any access that touches a byte outside
// the address space. Addresses never wrap.
var ErrMemoryFault = errors.New("memory fault")

// Memory is the Z32 byte-addressable, little-endian memory.
type Memory struct {
	data [MemorySize]byte
}

// NewMemory creates a zero-filled memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Check reports whether size bytes starting at addr are inside the address
// space.
func (m *Memory) Check(addr uint32, size int) error {
	if uint64(addr)+uint64(size) > MemorySize {
		return fmt.Errorf("%w: %d-byte access at 0x%08X", ErrMemoryFault, size, addr)
	}
	return nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	if err := m.Check(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint32, value uint8) error {
	if err := m.Check(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// Read32 reads a little-endian word. Words need not be aligned.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := m.Check(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) error {
	if err := m.Check(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], value)
	return nil
}

// ReadBlock copies size bytes starting at addr.
func (m *Memory) ReadBlock(addr uint32, size int) ([]byte, error) {
	if err := m.Check(addr, size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, m.data[addr:])
	return out, nil
}

// WriteBlock copies data into memory starting at addr.
func (m *Memory) WriteBlock(addr uint32, data []byte) error {
	if err := m.Check(addr, len(data)); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	return nil
}

// LoadWords stores words consecutively starting at addr.
func (m *Memory) LoadWords(addr uint32, words []uint32) error {
	if err := m.Check(addr, len(words)*4); err != nil {
		return fmt.Errorf("program of %d words does not fit: %w", len(words), err)
	}
	for i, w := range words {
		binary.LittleEndian.PutUint32(m.data[addr+uint32(i)*4:], w)
	}
	return nil
}

// Equal reports whether two memories hold the same bytes.
func (m *Memory) Equal(other *Memory) bool {
	return m.data == other.data
}
