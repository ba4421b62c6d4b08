package vm

import (
	"fmt"
	"log"
)

// Status reports why Step or Execute returned.
type Status int

const (
	// Running means the instruction completed and execution may continue.
	// Execute never returns it.
	Running Status = iota
	// Halted means a HALT instruction was reached, or the machine faulted.
	// The machine must be reloaded before it can run again.
	Halted
	// InputEmpty means an IN instruction found no pending input. The
	// instruction is retried by the next call once input is supplied.
	InputEmpty
	// OutputFull means an OUT instruction found the output queue at
	// capacity. The instruction is retried by the next call once the queue
	// has been drained.
	OutputFull
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case InputEmpty:
		return "input empty"
	case OutputFull:
		return "output full"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Step executes the instruction at PC.
func (m *Machine) Step() (st Status, err error) {
	if m.halted {
		return Halted, nil
	}
	defer m.recoverFault(&st, &err)
	return m.step(), nil
}

// Execute runs instructions until the machine halts or suspends on I/O. It
// returns Halted, InputEmpty or OutputFull, and a non-nil error only when the
// machine faults, in which case the status is Halted.
//
// A machine that never reaches HALT, IN or OUT does not return.
func (m *Machine) Execute() (st Status, err error) {
	if m.halted {
		return Halted, nil
	}
	defer m.recoverFault(&st, &err)
	for {
		if st := m.step(); st != Running {
			return st, nil
		}
	}
}

func (m *Machine) recoverFault(st *Status, err *error) {
	e := recover()
	if e == nil {
		return
	}
	var f Fault
	switch e := e.(type) {
	case Fault:
		f = e
	case FaultCode:
		f = Fault{Code: e}
	default:
		panic(e)
	}
	f.Addr = m.pc
	if m.pc >= 0 && m.pc < int64(len(m.mem)) {
		f.Op = Op(m.mem[m.pc] % 100)
	}
	m.halted = true
	*st, *err = Halted, f
}

// step executes one instruction, panicking with a Fault or FaultCode on a
// fatal condition.
func (m *Machine) step() Status {
	m.check(m.pc)
	pc := m.pc
	ins := Decode(m.mem[pc])
	switch ins.Op {
	case ADD, MUL, TLT, TEQ:
		a := m.addr(pc+1, ins.Modes[0])
		b := m.addr(pc+2, ins.Modes[1])
		c := m.writeAddr(pc+3, ins.Modes[2])
		x, y := m.mem[a], m.mem[b]
		var v int64
		switch ins.Op {
		case ADD:
			v = x + y
		case MUL:
			v = x * y
		case TLT:
			v = boolWord(x < y)
		case TEQ:
			v = boolWord(x == y)
		}
		m.mem[c] = v
		m.pc += 4

	case IN:
		a := m.writeAddr(pc+1, ins.Modes[0])
		if m.in.Empty() {
			return InputEmpty
		}
		v := m.in.Pop()
		m.mem[a] = v
		m.pc += 2
		m.trace(v)

	case OUT:
		a := m.addr(pc+1, ins.Modes[0])
		v := m.mem[a]
		if m.out.Full() {
			if m.cfg.OutputFull == Suspend {
				return OutputFull
			}
			log.Printf("output discarded %d", v)
		} else {
			m.out.Push(v)
		}
		m.pc += 2
		m.trace(v)

	case JNZ, JZ:
		a := m.addr(pc+1, ins.Modes[0])
		b := m.addr(pc+2, ins.Modes[1])
		if (m.mem[a] != 0) == (ins.Op == JNZ) {
			m.pc = m.mem[b]
		} else {
			m.pc += 3
		}

	case ARB:
		a := m.addr(pc+1, ins.Modes[0])
		m.rbp += m.mem[a]
		m.pc += 2

	case HALT:
		m.halted = true
		return Halted

	default:
		panic(UnknownOpcode)
	}
	m.steps++
	return Running
}

// check makes addr a valid memory address, growing a growable memory up to
// its limit.
func (m *Machine) check(addr int64) {
	if addr < 0 {
		panic(Fault{Code: BadAddress, Value: addr})
	}
	if addr >= int64(len(m.mem)) {
		if m.cfg.MemSize > 0 || addr >= int64(m.cfg.MaxMemory) {
			panic(Fault{Code: OutOfBounds, Value: addr})
		}
		m.grow(addr)
	}
}

// addr resolves the operand stored at pos to the address of its value.
func (m *Machine) addr(pos int64, mode Mode) int64 {
	m.check(pos)
	var a int64
	switch mode {
	case Immediate:
		return pos
	case Absolute:
		a = m.mem[pos]
	case Relative:
		a = m.rbp + m.mem[pos]
	default:
		panic(Fault{Code: BadMode, Value: int64(mode)})
	}
	m.check(a)
	return a
}

// writeAddr is like addr for an operand that is written to.
func (m *Machine) writeAddr(pos int64, mode Mode) int64 {
	if mode == Immediate {
		panic(ImmediateWrite)
	}
	return m.addr(pos, mode)
}

func (m *Machine) trace(v int64) {
	if w := m.cfg.Trace; w != nil && 0 <= v && v < 256 {
		w.Write([]byte{byte(v)})
	}
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Fault is returned by Step and Execute when the machine hits a fatal
// condition. The machine is left halted.
type Fault struct {
	Code  FaultCode
	Op    Op    // opcode at Addr, if Addr is valid
	Addr  int64 // program counter of the faulting instruction
	Value int64 // offending address or mode, if any
}

func (f Fault) Error() string {
	switch f.Code {
	case BadAddress, OutOfBounds, BadMode:
		return fmt.Sprintf("%s %d executing %s at %d", f.Code, f.Value, f.Op, f.Addr)
	default:
		return fmt.Sprintf("%s executing %s at %d", f.Code, f.Op, f.Addr)
	}
}

// FaultCode identifies the condition that caused a Fault.
type FaultCode byte

const (
	UnknownOpcode  FaultCode = iota + 1 // opcode outside the instruction set
	ImmediateWrite                      // write through an immediate operand
	BadAddress                          // negative address
	OutOfBounds                         // address beyond a fixed memory or the memory limit
	BadMode                             // addressing mode other than 0, 1 or 2
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		UnknownOpcode:  "unknown opcode",
		ImmediateWrite: "write to immediate operand",
		BadAddress:     "bad address",
		OutOfBounds:    "address out of bounds",
		BadMode:        "bad addressing mode",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
