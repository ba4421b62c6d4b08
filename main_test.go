package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/nf/intcode/vm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newRunner(input ...int64) (*runner, *bytes.Buffer) {
	var out bytes.Buffer
	return &runner{input: input, stdin: strings.NewReader(""), stdout: &out}, &out
}

func TestRun(t *testing.T) {
	quine := []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}
	r, out := newRunner()
	if err := r.run(quine); err != nil {
		t.Fatal(err)
	}
	var want strings.Builder
	for _, v := range quine {
		want.WriteString(strconv.FormatInt(v, 10) + "\n")
	}
	if got := out.String(); got != want.String() {
		t.Errorf("output = %q, want %q", got, want.String())
	}
}

func TestRunPokes(t *testing.T) {
	r, out := newRunner()
	r.pokes = pokeList{{3, 42}, {2000, 1}}
	if err := r.run([]int64{4, 3, 99, 0}); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestRunNeedsInput(t *testing.T) {
	r, _ := newRunner()
	if err := r.run([]int64{3, 0, 99}); err != errNeedInput {
		t.Errorf("run = %v, want %v", err, errNeedInput)
	}
}

func TestParts(t *testing.T) {
	equal8 := []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}
	for _, c := range []struct {
		p1, p2 optInt
		want   string
	}{
		{optInt{8, true}, optInt{7, true}, "part1: 1\npart2: 0\n"},
		{optInt{}, optInt{8, true}, "part2: 1\n"},
		{optInt{7, true}, optInt{}, "part1: 0\n"},
	} {
		r, out := newRunner()
		if err := r.parts(equal8, c.p1, c.p2); err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != c.want {
			t.Errorf("parts(%v, %v) printed %q, want %q", c.p1, c.p2, got, c.want)
		}
	}

	r, _ := newRunner()
	if err := r.parts([]int64{3, 0, 99}, optInt{1, true}); err == nil {
		t.Error("parts without output succeeded")
	}
}

func TestDrive(t *testing.T) {
	echo := []int64{3, 50, 4, 50, 1105, 1, 0}
	m, err := vm.New(vm.QueueSize(2))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(echo); err != nil {
		t.Fatal(err)
	}
	in := []int64{1, 2, 3, 4, 5}
	var got []int64
	err = drive(m, in, func(v int64) { got = append(got, v) })
	if err != errNeedInput {
		t.Errorf("drive = %v, want %v", err, errNeedInput)
	}
	if !slices.Equal(got, in) {
		t.Errorf("outputs = %v, want %v", got, in)
	}
}

func TestAmplifyMode(t *testing.T) {
	prog := []int64{3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0}
	r, out := newRunner()
	if err := r.amplify(prog, "0,1,2,3,4"); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "max signal: 43210 (phases [4 3 2 1 0])\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := r.amplify(prog, "0,x"); err == nil {
		t.Error("amplify with bad phases succeeded")
	}
}

func TestNetworkMode(t *testing.T) {
	prog := []int64{3, 50, 104, 255, 4, 50, 4, 50, 3, 51, 1105, 1, 8, 99}
	r, out := newRunner()
	if err := r.network(prog, 3); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "part1: 0\npart2: 2\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestParseValues(t *testing.T) {
	for _, c := range []struct {
		in   string
		want []int64
		err  bool
	}{
		{"", nil, false},
		{"  ", nil, false},
		{"1", []int64{1}, false},
		{"1, -2,3", []int64{1, -2, 3}, false},
		{"1,,2", nil, true},
		{"a", nil, true},
	} {
		got, err := parseValues(c.in)
		if (err != nil) != c.err || !slices.Equal(got, c.want) {
			t.Errorf("parseValues(%q) = %v, %v, want %v (error %v)", c.in, got, err, c.want, c.err)
		}
	}
}

func TestFlags(t *testing.T) {
	var o optInt
	if o.String() != "" {
		t.Errorf("unset optInt = %q", o.String())
	}
	if err := o.Set("-12"); err != nil || !o.set || o.v != -12 || o.String() != "-12" {
		t.Errorf("Set(-12) = %v, %+v", err, o)
	}
	if err := (&optInt{}).Set("x"); err == nil {
		t.Error("optInt.Set(x) succeeded")
	}

	var l pokeList
	for _, s := range []string{"5=7", "1 = -2"} {
		if err := l.Set(s); err != nil {
			t.Errorf("Set(%q): %v", s, err)
		}
	}
	if got, want := l.String(), "5=7,1=-2"; got != want {
		t.Errorf("pokes = %q, want %q", got, want)
	}
	for _, s := range []string{"5", "-1=2", "a=1", "1=b"} {
		if err := l.Set(s); err == nil {
			t.Errorf("Set(%q) succeeded", s)
		}
	}
}

func TestOptions(t *testing.T) {
	var buf bytes.Buffer
	m, err := vm.New(options(64, 8, true, &buf)...)
	if err != nil {
		t.Fatal(err)
	}
	cfg := m.Config()
	if cfg.MemSize != 64 || cfg.QueueSize != 8 || cfg.OutputFull != vm.Drop || cfg.Trace == nil {
		t.Errorf("Config() = %+v", cfg)
	}
	m, err = vm.New(options(0, vm.DefaultQueueSize, false, nil)...)
	if err != nil {
		t.Fatal(err)
	}
	cfg = m.Config()
	if cfg.MemSize != 0 || cfg.OutputFull != vm.Suspend || cfg.Trace != nil {
		t.Errorf("default Config() = %+v", cfg)
	}
	if _, err := vm.New(options(0, 0, false, nil)...); err == nil {
		t.Error("zero queue size accepted")
	}
}
