package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/nf/intcode/pipeline"
	"github.com/nf/intcode/vm"
)

var errNeedInput = errors.New("program is waiting for input")

// runner holds the command's configuration for running a program.
type runner struct {
	opts  []vm.Option
	input []int64
	pokes pokeList

	ascii  bool
	screen bool
	gui    bool
	png    string
	scale  int

	stdin  io.Reader
	stdout io.Writer
}

// load returns a machine with prog loaded and the -set pokes applied.
func (r *runner) load(prog []int64) (*vm.Machine, error) {
	m, err := vm.New(r.opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Load(prog); err != nil {
		return nil, err
	}
	for _, p := range r.pokes {
		if err := m.SetMem(p.addr, p.v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// run executes prog once, in console or screen mode if selected, printing
// each output value on its own line otherwise.
func (r *runner) run(prog []int64) error {
	m, err := r.load(prog)
	if err != nil {
		return err
	}
	switch {
	case r.screen:
		return r.display(m)
	case r.ascii:
		return r.console(m)
	}
	return drive(m, r.input, func(v int64) {
		fmt.Fprintln(r.stdout, v)
	})
}

// parts runs prog from a fresh load for each set part, with that part's
// value as the only input, and prints the last value it sent.
func (r *runner) parts(prog []int64, parts ...optInt) error {
	for i, p := range parts {
		if !p.set {
			continue
		}
		m, err := r.load(prog)
		if err != nil {
			return err
		}
		var (
			last int64
			got  bool
		)
		err = drive(m, []int64{p.v}, func(v int64) { last, got = v, true })
		if err != nil {
			return errors.Wrapf(err, "part%d", i+1)
		}
		if !got {
			return errors.Errorf("part%d: no output", i+1)
		}
		fmt.Fprintf(r.stdout, "part%d: %d\n", i+1, last)
	}
	return nil
}

func (r *runner) amplify(prog []int64, phases string) error {
	ph, err := parseValues(phases)
	if err != nil {
		return errors.Wrap(err, "phases")
	}
	best, order, err := pipeline.MaxSignal(prog, ph, 0, r.opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "max signal: %d (phases %v)\n", best, order)
	return nil
}

func (r *runner) network(prog []int64, n int) error {
	nw, err := pipeline.NewNetwork(prog, n, r.opts...)
	if err != nil {
		return err
	}
	first, repeated, err := nw.Run()
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "part1: %d\npart2: %d\n", first, repeated)
	return nil
}

// drive runs m until it halts, passing every value it sends to f and
// queueing input as it asks for it. It fails with errNeedInput if m waits
// for input after input is used up.
func drive(m *vm.Machine, input []int64, f func(int64)) error {
	for {
		st, err := m.Execute()
		if err != nil {
			return err
		}
		for !m.OutputEmpty() {
			f(m.PopOutput())
		}
		switch st {
		case vm.Halted:
			return nil
		case vm.InputEmpty:
			if len(input) == 0 {
				return errNeedInput
			}
			input = input[feed(m, input):]
		}
	}
}

// feed queues as many of vs as fit in the input queue of m and returns
// how many it queued.
func feed(m *vm.Machine, vs []int64) (n int) {
	for n < len(vs) && !m.InputFull() {
		m.PushInput(vs[n])
		n++
	}
	return n
}
