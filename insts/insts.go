// Package insts provides the Z32 instruction set: the canonical opcode table
// and the codec that maps 32-bit instruction words to decoded instructions
// and back.
//
// Every word has a 6-bit opcode in bits [31:26]. The remaining bits are laid
// out according to the opcode's format:
//   - RegReg: rd [25:22], rs1 [21:18], rs2 [17:14], bits [13:0] reserved
//   - RegImm: rd [25:22], rs1 [21:18], signed imm18 [17:0]
//   - Jump: signed imm26 [25:0]
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x28400000|10) // ADDI r1, r0, 10
//	word, err := insts.Encode(inst)
package insts
