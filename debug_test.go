package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nf/intcode/vm"
)

// echoLoop reads a value into [20], writes it back and loops.
var echoLoop = []int64{3, 20, 4, 20, 1105, 1, 0}

func TestDebugger(t *testing.T) {
	r, _ := newRunner(5)
	d := newDebugger(r)
	if k := d.exec("s"); k != quietState {
		t.Errorf("step before load = %v, want quiet", k)
	}
	if err := d.reset(echoLoop); err != nil {
		t.Fatal(err)
	}

	dump := filepath.Join(t.TempDir(), "dump.txt")
	for i, c := range []struct {
		cmd  string
		want stateKind
		pc   int64
	}{
		{"b 2", quietState, 0},
		{"c", breakState, 2},
		{"s", stepState, 4},
		{"continue", inputState, 0},
		{"i 9 10", stepState, 0},
		{"c", breakState, 2},
		{"w 20", quietState, 2},
		{"step 3", breakState, 2},
		{"dump " + dump, quietState, 2},
		{"s x", quietState, 2},
		{"b", quietState, 2},
		{"bogus", quietState, 2},
		{"s 2", stepState, 0},
	} {
		if got := d.exec(c.cmd); got != c.want {
			t.Errorf("%d: exec(%q) = %v, want %v", i, c.cmd, got, c.want)
		}
		if got := d.m.PC(); got != c.pc {
			t.Errorf("%d: after %q pc = %d, want %d", i, c.cmd, got, c.pc)
		}
	}
	if v, _ := d.m.Mem(20); v != 10 {
		t.Errorf("[20] = %d, want 10", v)
	}
	if got := watchContent(d.m, d.brks, d.watches); got != "20 (20) 10" {
		t.Errorf("watchContent = %q", got)
	}

	prog, err := vm.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog) != d.m.Len() || prog[20] != 10 || prog[4] != 1105 {
		t.Errorf("dump has %d words, [20] = %d, [4] = %d", len(prog), prog[20], prog[4])
	}

	if k := d.exec("reset"); k != stepState {
		t.Errorf("reset = %v, want step", k)
	}
	if v, _ := d.m.Mem(20); v != 0 || d.m.PC() != 0 || d.m.InputLen() != 1 {
		t.Errorf("after reset: [20] = %d, pc = %d, %d inputs", v, d.m.PC(), d.m.InputLen())
	}
	if k := d.exec("a hi"); k != stepState || d.m.InputLen() != 4 {
		t.Errorf("ascii input: %v, %d inputs", k, d.m.InputLen())
	}
}

func TestDebuggerHalt(t *testing.T) {
	r, _ := newRunner()
	d := newDebugger(r)
	if err := d.reset([]int64{99}); err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{"s", "c", "s"} {
		if k := d.exec(cmd); k != haltState {
			t.Errorf("exec(%q) = %v, want halt", cmd, k)
		}
	}

	if err := d.reset([]int64{42}); err != nil {
		t.Fatal(err)
	}
	if k := d.exec("c"); k != haltState {
		t.Errorf("fault: exec(c) = %v, want halt", k)
	}
}

func TestStateMsg(t *testing.T) {
	m, err := vm.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load([]int64{3, 20, 4, 20, 99}); err != nil {
		t.Fatal(err)
	}
	m.PushInputs(7, 8)
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	syms := symbols{{2, "print"}}

	want := "0002 OUT [20]" + strings.Repeat(" ", 16) + "         print (2)\n" +
		"rb: 0 steps: 1\n" +
		"in: ( 8 ) out: ( )\n"
	if got := stateMsg(syms, m, stepState); got != want {
		t.Errorf("stateMsg =\n%q\nwant\n%q", got, want)
	}
	if got := stateMsg(nil, m, breakState); !strings.Contains(got, "[break]") {
		t.Errorf("break stateMsg = %q", got)
	}
}
