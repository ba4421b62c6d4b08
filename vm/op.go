package vm

import (
	"fmt"
	"strings"
)

// Op represents an intcode opcode, the two low-order decimal digits of an
// instruction word.
type Op int64

const (
	ADD  Op = 1
	MUL  Op = 2
	IN   Op = 3
	OUT  Op = 4
	JNZ  Op = 5
	JZ   Op = 6
	TLT  Op = 7
	TEQ  Op = 8
	ARB  Op = 9
	HALT Op = 99
)

// Operands reports the number of operands that follow the opcode in memory,
// or -1 if op is not a valid opcode.
func (op Op) Operands() int {
	switch op {
	case ADD, MUL, TLT, TEQ:
		return 3
	case JNZ, JZ:
		return 2
	case IN, OUT, ARB:
		return 1
	case HALT:
		return 0
	default:
		return -1
	}
}

// Valid reports whether op is part of the instruction set.
func (op Op) Valid() bool { return op.Operands() >= 0 }

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int64(op))
}

var opNames = map[Op]string{
	ADD:  "ADD",
	MUL:  "MUL",
	IN:   "IN",
	OUT:  "OUT",
	JNZ:  "JNZ",
	JZ:   "JZ",
	TLT:  "TLT",
	TEQ:  "TEQ",
	ARB:  "ARB",
	HALT: "HALT",
}

// Mode is the addressing mode of an operand.
type Mode int64

const (
	Absolute  Mode = 0 // the operand holds an address
	Immediate Mode = 1 // the operand is the value
	Relative  Mode = 2 // the operand holds an offset from the relative base
)

func (m Mode) String() string {
	switch m {
	case Absolute:
		return "absolute"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", int64(m))
	}
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Op
	Modes [3]Mode
}

// Decode splits an instruction word into its opcode and the addressing modes
// of its three operands.
func Decode(word int64) Instruction {
	ins := Instruction{Op: Op(word % 100)}
	word /= 100
	for i := range ins.Modes {
		ins.Modes[i] = Mode(word % 10)
		word /= 10
	}
	return ins
}

// Disasm returns a textual form of the instruction at addr in mem and the
// number of words it occupies. Words that do not decode to a valid
// instruction are shown as data.
func Disasm(mem []int64, addr int) (string, int) {
	if addr < 0 || addr >= len(mem) {
		return "", 0
	}
	ins := Decode(mem[addr])
	n := ins.Op.Operands()
	if n < 0 || addr+n >= len(mem) {
		return fmt.Sprintf("DATA %d", mem[addr]), 1
	}
	var b strings.Builder
	b.WriteString(ins.Op.String())
	for i := 0; i < n; i++ {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		v := mem[addr+1+i]
		switch ins.Modes[i] {
		case Absolute:
			fmt.Fprintf(&b, "[%d]", v)
		case Immediate:
			fmt.Fprintf(&b, "%d", v)
		case Relative:
			fmt.Fprintf(&b, "[rb%+d]", v)
		default:
			fmt.Fprintf(&b, "?%d", v)
		}
	}
	return b.String(), n + 1
}
