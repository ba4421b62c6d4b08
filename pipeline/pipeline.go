// Package pipeline drives groups of intcode machines that exchange values
// through their queues.
package pipeline

import (
	"github.com/pkg/errors"

	"github.com/nf/intcode/vm"
)

// ErrStalled is returned by Run when a full round completes no instruction
// and moves no value while some machine has not halted.
var ErrStalled = errors.New("pipeline stalled")

// Pipeline runs a fixed set of machines round-robin, in order.
type Pipeline struct {
	Machines []*vm.Machine

	links []link
}

type link struct{ from, to int }

// New returns a pipeline of the given machines. The machines are not
// connected; see Chain, Ring and Copy.
func New(ms ...*vm.Machine) *Pipeline {
	return &Pipeline{Machines: ms}
}

// Chain makes the output queue of each machine the input queue of the next.
func (p *Pipeline) Chain() *Pipeline {
	for i := 1; i < len(p.Machines); i++ {
		vm.Connect(p.Machines[i-1], p.Machines[i])
	}
	return p
}

// Ring chains the machines and connects the last one back to the first.
func (p *Pipeline) Ring() *Pipeline {
	if n := len(p.Machines); n > 0 {
		p.Chain()
		vm.Connect(p.Machines[n-1], p.Machines[0])
	}
	return p
}

// Copy adds a link that moves values from the output queue of machine from
// to the input queue of machine to after from has run, as many as fit.
func (p *Pipeline) Copy(from, to int) *Pipeline {
	if from < 0 || from >= len(p.Machines) || to < 0 || to >= len(p.Machines) {
		panic(errors.Errorf("invalid link %d -> %d", from, to))
	}
	p.links = append(p.links, link{from, to})
	return p
}

// Halted reports whether every machine has halted.
func (p *Pipeline) Halted() bool {
	for _, m := range p.Machines {
		if !m.Halted() {
			return false
		}
	}
	return true
}

// Round runs each machine that has not halted until it halts or suspends,
// in order, moving values along copy links after each. It reports whether
// any instruction completed or any value moved.
func (p *Pipeline) Round() (progress bool, err error) {
	for i, m := range p.Machines {
		if !m.Halted() {
			steps := m.Steps()
			if _, err := m.Execute(); err != nil {
				return progress, errors.Wrapf(err, "machine %d", i)
			}
			if m.Steps() != steps {
				progress = true
			}
		}
		if p.move(i) > 0 {
			progress = true
		}
	}
	return progress, nil
}

func (p *Pipeline) move(from int) (n int) {
	for _, l := range p.links {
		if l.from != from {
			continue
		}
		out, in := p.Machines[l.from].Output(), p.Machines[l.to].Input()
		for !out.Empty() && !in.Full() {
			in.Push(out.Pop())
			n++
		}
	}
	return n
}

// Run calls Round until every machine has halted. It returns ErrStalled if
// a round makes no progress first.
func (p *Pipeline) Run() error {
	for !p.Halted() {
		progress, err := p.Round()
		if err != nil {
			return err
		}
		if !progress && !p.Halted() {
			return ErrStalled
		}
	}
	return nil
}
