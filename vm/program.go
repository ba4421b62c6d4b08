package vm

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Parse reads a program written as comma-separated decimal words. Space
// around words, line breaks and a trailing comma are ignored.
func Parse(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read failed")
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty program")
	}
	fields := bytes.Split(b, []byte{','})
	if len(bytes.TrimSpace(fields[len(fields)-1])) == 0 {
		fields = fields[:len(fields)-1]
	}
	prog := make([]int64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(string(bytes.TrimSpace(f)), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "word %d", i)
		}
		prog = append(prog, v)
	}
	return prog, nil
}

// ReadFile loads a program from the named file. See Parse for the format.
func ReadFile(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	prog, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return prog, nil
}

// Format writes prog in the format read by Parse.
func Format(w io.Writer, prog []int64) error {
	var b []byte
	for i, v := range prog {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, v, 10)
	}
	b = append(b, '\n')
	_, err := w.Write(b)
	return errors.Wrap(err, "write failed")
}
