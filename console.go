package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nf/intcode/vm"
)

// console runs m as a text program. When m waits for input, a line is read
// from stdin and queued as ASCII codes. Output values below 256 are written
// as bytes, larger ones as decimal numbers on their own line.
func (r *runner) console(m *vm.Machine) error {
	var (
		in      = bufio.NewReader(r.stdin)
		out     = bufio.NewWriter(r.stdout)
		pending = r.input
	)
	defer out.Flush()
	for {
		st, err := m.Execute()
		if err != nil {
			return err
		}
		for _, v := range m.Outputs() {
			writeASCII(out, v)
		}
		switch st {
		case vm.Halted:
			return nil
		case vm.InputEmpty:
			if len(pending) == 0 {
				if err := out.Flush(); err != nil {
					return err
				}
				line, err := in.ReadString('\n')
				if line == "" && err != nil {
					if err == io.EOF {
						return errNeedInput
					}
					return err
				}
				pending = asciiLine(line)
			}
			pending = pending[feed(m, pending):]
		}
	}
}

// asciiLine returns the codes of line, ending in a single newline.
func asciiLine(line string) []int64 {
	line = strings.TrimRight(line, "\r\n") + "\n"
	vs := make([]int64, len(line))
	for i := range vs {
		vs[i] = int64(line[i])
	}
	return vs
}

func writeASCII(w *bufio.Writer, v int64) {
	if 0 <= v && v < 256 {
		w.WriteByte(byte(v))
		return
	}
	fmt.Fprintf(w, "%d\n", v)
}
