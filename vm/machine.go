// Package vm provides an implementation of the intcode computer, called
// Machine, that executes intcode programs.
//
// A Machine exchanges values with its caller through two bounded queues.
// Execution suspends, rather than blocks, when an IN instruction finds the
// input queue empty or an OUT instruction finds the output queue full; the
// caller services the queue and calls Execute again. Machines may be chained
// by sharing one machine's output queue as another's input queue (see
// Connect).
package vm

import (
	"io"

	"github.com/pkg/errors"
)

// minMemory is the smallest allocation of a growable memory.
const minMemory = 1024

// DefaultMaxMemory is the default limit, in words, of a growable memory.
const DefaultMaxMemory = 1 << 27

// maxMaxMemory bounds MaxMemory so that doubling a size cannot overflow.
const maxMaxMemory = 1 << 40

// Policy selects what an OUT instruction does when the output queue is full.
type Policy int

const (
	// Suspend makes Execute return OutputFull without completing the
	// instruction.
	Suspend Policy = iota
	// Drop discards the value, logs it and continues.
	Drop
)

func (p Policy) String() string {
	switch p {
	case Suspend:
		return "suspend"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// Config holds the configuration of a Machine.
type Config struct {
	MemSize    int       // Fixed memory size in words; 0 means growable.
	MaxMemory  int       // Limit of a growable memory in words.
	QueueSize  int       // Capacity of the input and output queues.
	OutputFull Policy    // Behaviour of OUT on a full output queue.
	Trace      io.Writer // Receives IN/OUT values in 0..255 as bytes.
}

// Option configures a Machine.
type Option func(*Machine) error

// FixedMemory gives the machine a memory of exactly words cells. Accessing an
// address beyond it is a fault instead of growing the memory.
func FixedMemory(words int) Option {
	return func(m *Machine) error {
		if words <= 0 {
			return errors.Errorf("invalid memory size %d", words)
		}
		m.cfg.MemSize = words
		return nil
	}
}

// MaxMemory limits a growable memory to words cells. Accessing an address
// at or beyond the limit is a fault. The default is DefaultMaxMemory.
func MaxMemory(words int) Option {
	return func(m *Machine) error {
		if words < minMemory || words > maxMaxMemory {
			return errors.Errorf("invalid memory limit %d", words)
		}
		m.cfg.MaxMemory = words
		return nil
	}
}

// QueueSize sets the capacity of both queues. The default is
// DefaultQueueSize.
func QueueSize(size int) Option {
	return func(m *Machine) error {
		if size <= 0 {
			return errors.Errorf("invalid queue size %d", size)
		}
		m.cfg.QueueSize = size
		return nil
	}
}

// OnOutputFull sets the output backpressure policy. The default is Suspend.
func OnOutputFull(p Policy) Option {
	return func(m *Machine) error {
		if p != Suspend && p != Drop {
			return errors.Errorf("invalid output policy %d", p)
		}
		m.cfg.OutputFull = p
		return nil
	}
}

// Trace mirrors every value in the range 0..255 that crosses an IN or OUT
// instruction to w, one byte per value. Write errors are ignored.
func Trace(w io.Writer) Option {
	return func(m *Machine) error {
		m.cfg.Trace = w
		return nil
	}
}

// Machine is an intcode computer.
type Machine struct {
	cfg Config

	mem []int64
	pc  int64
	rbp int64

	in  *Queue
	out *Queue

	steps  int64
	halted bool
}

// New returns a Machine with an empty memory configured by opts. Call Load
// before Execute.
func New(opts ...Option) (*Machine, error) {
	m := &Machine{cfg: Config{QueueSize: DefaultQueueSize, MaxMemory: DefaultMaxMemory}}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.cfg.MemSize > 0 {
		m.mem = make([]int64, m.cfg.MemSize)
	}
	m.in = NewQueue(m.cfg.QueueSize)
	m.out = NewQueue(m.cfg.QueueSize)
	return m, nil
}

// Config returns the configuration of the machine.
func (m *Machine) Config() Config { return m.cfg }

// Load resets the machine and installs a copy of program at address 0. The
// program counter and relative base are reset to 0, both queues are emptied
// (including a queue shared with a connected machine) and all memory past the
// program is zeroed.
func (m *Machine) Load(program []int64) error {
	if n := m.cfg.MemSize; n > 0 {
		if len(program) > n {
			return errors.Errorf("program of %d words does not fit in %d words of memory", len(program), n)
		}
		clear(m.mem)
	} else {
		if len(program) > m.cfg.MaxMemory {
			return errors.Errorf("program of %d words exceeds the memory limit of %d words", len(program), m.cfg.MaxMemory)
		}
		m.mem = m.mem[:0]
		m.grow(int64(len(program)))
	}
	copy(m.mem, program)
	m.pc, m.rbp = 0, 0
	m.steps = 0
	m.halted = false
	m.in.Reset()
	m.out.Reset()
	return nil
}

// grow extends a growable memory so that addr is a valid address, doubling
// its size as many times as needed, up to the memory limit. New cells are
// zero. The caller checks addr against the limit.
func (m *Machine) grow(addr int64) {
	n := len(m.mem)
	if n == 0 {
		n = minMemory
	}
	for int64(n) <= addr && n < m.cfg.MaxMemory {
		n *= 2
	}
	n = min(n, m.cfg.MaxMemory)
	if n <= cap(m.mem) {
		ext := m.mem[len(m.mem):n]
		clear(ext)
		m.mem = m.mem[:n]
		return
	}
	mem := make([]int64, n)
	copy(mem, m.mem)
	m.mem = mem
}

// PC returns the program counter.
func (m *Machine) PC() int64 { return m.pc }

// RBP returns the relative base pointer.
func (m *Machine) RBP() int64 { return m.rbp }

// Steps returns the number of instructions completed since the last Load.
func (m *Machine) Steps() int64 { return m.steps }

// Halted reports whether the machine has executed HALT or faulted.
func (m *Machine) Halted() bool { return m.halted }

// Len returns the current memory size in words.
func (m *Machine) Len() int { return len(m.mem) }

// Memory returns the machine memory. The slice is only valid until the
// memory next grows.
func (m *Machine) Memory() []int64 { return m.mem }

// Mem returns the value at addr. Reading beyond the memory of a growable
// machine returns 0 without growing it.
func (m *Machine) Mem(addr int64) (int64, error) {
	if addr < 0 || (m.cfg.MemSize > 0 && addr >= int64(len(m.mem))) {
		return 0, Fault{Code: BadAddress, Addr: m.pc, Value: addr}
	}
	if addr >= int64(len(m.mem)) {
		return 0, nil
	}
	return m.mem[addr], nil
}

// SetMem stores v at addr, growing a growable memory as needed.
func (m *Machine) SetMem(addr, v int64) error {
	if addr < 0 {
		return Fault{Code: BadAddress, Addr: m.pc, Value: addr}
	}
	if addr >= int64(len(m.mem)) {
		if m.cfg.MemSize > 0 || addr >= int64(m.cfg.MaxMemory) {
			return Fault{Code: OutOfBounds, Addr: m.pc, Value: addr}
		}
		m.grow(addr)
	}
	m.mem[addr] = v
	return nil
}

// Input returns the input queue.
func (m *Machine) Input() *Queue { return m.in }

// Output returns the output queue.
func (m *Machine) Output() *Queue { return m.out }

// PushInput enqueues one input value. It panics with ErrQueueFull if the
// input queue is full; check InputFull first.
func (m *Machine) PushInput(v int64) { m.in.Push(v) }

// PushInputs enqueues each of vs in order.
func (m *Machine) PushInputs(vs ...int64) {
	for _, v := range vs {
		m.in.Push(v)
	}
}

// PushString enqueues the bytes of s as ASCII input values.
func (m *Machine) PushString(s string) {
	for i := 0; i < len(s); i++ {
		m.in.Push(int64(s[i]))
	}
}

// PopOutput dequeues one output value. It panics with ErrQueueEmpty if the
// output queue is empty; check OutputEmpty first.
func (m *Machine) PopOutput() int64 { return m.out.Pop() }

// Outputs drains the output queue.
func (m *Machine) Outputs() []int64 {
	vs := m.out.Values()
	m.out.Reset()
	return vs
}

func (m *Machine) InputLen() int     { return m.in.Len() }
func (m *Machine) InputFull() bool   { return m.in.Full() }
func (m *Machine) OutputLen() int    { return m.out.Len() }
func (m *Machine) OutputEmpty() bool { return m.out.Empty() }

// Connect makes the output queue of up the input queue of down, so that
// values written by up are read by down. A machine may be connected to
// itself. The previous input queue of down is discarded.
func Connect(up, down *Machine) {
	down.in = up.out
}
