package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrBadHexLine is returned for a line of a hex file that is not a word.
var ErrBadHexLine = errors.New("bad hex line")

// HexDigits is the fixed width of one word in the interchange format.
const HexDigits = 8

// WriteHex writes one word per line as 8 upper-case hex digits with no
// prefix, each line terminated by '\n'.
func WriteHex(w io.Writer, p Program) error {
	bw := bufio.NewWriter(w)
	for _, word := range p.words {
		if _, err := fmt.Fprintf(bw, "%08X\n", word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadHex parses the interchange format. Blank lines and lines starting
// with "//" or "#" are skipped; every other line must be exactly 8 hex
// digits, either case.
func ReadHex(r io.Reader, name string) (Program, error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		if len(line) != HexDigits {
			return Program{}, fmt.Errorf("%s:%d: %w: %q is not %d hex digits", name, lineNo, ErrBadHexLine, line, HexDigits)
		}
		v, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return Program{}, fmt.Errorf("%s:%d: %w: %q", name, lineNo, ErrBadHexLine, line)
		}
		words = append(words, uint32(v))
	}
	if err := scanner.Err(); err != nil {
		return Program{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return Program{name: name, words: words}, nil
}

// Load reads a hex file. The program is named after the file.
func Load(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadHex(f, name)
}

// Save writes a program to a hex file.
func Save(path string, p Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create hex file: %w", err)
	}

	if err := WriteHex(f, p); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write hex file: %w", err)
	}

	return f.Close()
}

// SaveTemp writes a program to a new file in dir (os.TempDir() if empty)
// and returns its path. The caller owns the file and must remove it.
func SaveTemp(dir string, p Program) (string, error) {
	f, err := os.CreateTemp(dir, "z32-*.hex")
	if err != nil {
		return "", fmt.Errorf("failed to create temp hex file: %w", err)
	}
	path := f.Name()

	if err := WriteHex(f, p); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write temp hex file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return path, nil
}

func formatLine(addr, word uint32, text string) string {
	return fmt.Sprintf("%08X: %08X  %s", addr, word, text)
}
