package emu

import "io"

// OutputPort is the Z32's single output channel. Every OUT instruction
// appends one byte.
type OutputPort struct {
	data []byte
	echo io.Writer
}

// NewOutputPort creates an output port. If echo is not nil every emitted
// byte is also written to it.
func NewOutputPort(echo io.Writer) *OutputPort {
	return &OutputPort{echo: echo}
}

// Emit appends a byte to the channel.
func (p *OutputPort) Emit(b byte) {
	p.data = append(p.data, b)
	if p.echo != nil {
		_, _ = p.echo.Write([]byte{b})
	}
}

// Bytes returns a copy of everything emitted so far.
func (p *OutputPort) Bytes() []byte {
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out
}
