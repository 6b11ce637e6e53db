package cosim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/z32sim/insts"
)

// DumpTag is the first field of every register dump line.
const DumpTag = "REGDUMP"

// Dump is a parsed register dump plus the lines that were not part of it.
type Dump struct {
	Regs [insts.NumRegs]uint32

	// Noise holds every non-dump line, in order.
	Noise []string
}

// ParseDump reads simulator output. Only lines whose first field is
// REGDUMP are interpreted; they must have the form
//
//	REGDUMP <index 0-15> <hex value, optional 0x prefix>
//
// and together name every register exactly once. Any violation returns
// ErrMalformedOutput together with whatever was parsed.
func ParseDump(r io.Reader) (Dump, error) {
	var (
		d    Dump
		seen [insts.NumRegs]bool
		n    int
	)

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return d, fmt.Errorf("%w: %v", ErrMalformedOutput, readErr)
		}
		if readErr == io.EOF && line == "" {
			break
		}
		lineNo++
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != DumpTag {
			d.Noise = append(d.Noise, line)
			continue
		}

		reg, value, err := parseDumpFields(fields)
		if err != nil {
			return d, fmt.Errorf("%w: line %d %q: %v", ErrMalformedOutput, lineNo, line, err)
		}
		if seen[reg] {
			return d, fmt.Errorf("%w: line %d: r%d dumped twice", ErrMalformedOutput, lineNo, reg)
		}
		seen[reg] = true
		d.Regs[reg] = value
		n++
	}

	if n != insts.NumRegs {
		var missing []string
		for i, ok := range seen {
			if !ok {
				missing = append(missing, fmt.Sprintf("r%d", i))
			}
		}
		return d, fmt.Errorf("%w: missing %s", ErrMalformedOutput, strings.Join(missing, ","))
	}

	return d, nil
}

func parseDumpFields(fields []string) (int, uint32, error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("want 3 fields, got %d", len(fields))
	}

	reg, err := strconv.Atoi(fields[1])
	if err != nil || reg < 0 || reg >= insts.NumRegs {
		return 0, 0, fmt.Errorf("bad register index %q", fields[1])
	}

	hex := fields[2]
	if strings.HasPrefix(hex, "0x") || strings.HasPrefix(hex, "0X") {
		hex = hex[2:]
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad value %q", fields[2])
	}

	return reg, uint32(value), nil
}

// FormatDump writes regs in the REGDUMP protocol.
func FormatDump(w io.Writer, regs [insts.NumRegs]uint32) error {
	for i, v := range regs {
		if _, err := fmt.Fprintf(w, "%s %d %08x\n", DumpTag, i, v); err != nil {
			return err
		}
	}
	return nil
}
