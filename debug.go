package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/vm"
)

type stateKind int

const (
	quietState stateKind = iota // state pane unchanged
	stepState
	breakState
	inputState
	outputState
	pauseState
	haltState
)

type debugger struct {
	run *runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	pause atomic.Bool

	mu      sync.Mutex
	m       *vm.Machine
	prog    []int64
	syms    symbols
	brks    []symbol
	watches []symbol
}

func newDebugger(r *runner) *debugger {
	d := &debugger{
		run: r,
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(d.input.GetText())
		if cmd == "" {
			return
		}
		d.input.SetText("")
		switch cmd {
		case "exit":
			d.app.Stop()
			return
		case "p", "pause":
			d.pause.Store(true)
			return
		}
		go func() { d.refresh(d.exec(cmd)) }()
	})
	return d
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

// load replaces the debugged machine with a fresh one running prog.
func (d *debugger) load(prog []int64) {
	if err := d.reset(prog); err != nil {
		log.Printf("load: %v", err)
		return
	}
	d.refresh(stepState)
}

func (d *debugger) reset(prog []int64) error {
	m, err := d.run.load(prog)
	if err != nil {
		return err
	}
	feed(m, d.run.input)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m, d.prog = m, prog
	return nil
}

// exec runs one debugger command and returns the resulting state.
func (d *debugger) exec(cmd string) stateKind {
	cmd, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	if cmd == "r" || cmd == "reset" {
		d.mu.Lock()
		prog := d.prog
		d.mu.Unlock()
		if err := d.reset(prog); err != nil {
			log.Printf("reset: %v", err)
			return quietState
		}
		log.Print("reset")
		return stepState
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		log.Print("no program loaded")
		return quietState
	}
	switch cmd {
	case "s", "step":
		n := 1
		if arg != "" {
			var err error
			if n, err = strconv.Atoi(arg); err != nil || n < 1 {
				log.Printf("invalid count %q", arg)
				return quietState
			}
		}
		return d.steps(n)
	case "c", "continue":
		return d.steps(-1)
	case "b", "break":
		if arg == "" {
			d.brks = nil
			log.Print("cleared breaks")
			return quietState
		}
		s, ok := d.syms.resolve(arg)
		if !ok {
			log.Printf("invalid addr %q", arg)
			return quietState
		}
		d.brks = append(d.brks, s)
		log.Printf("set break %d", s.addr)
	case "w", "watch":
		if arg == "" {
			d.watches = nil
			log.Print("cleared watches")
			return quietState
		}
		s, ok := d.syms.resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return quietState
		}
		d.watches = append(d.watches, s)
		log.Printf("watching %d", s.addr)
	case "i", "input":
		vs, err := parseValues(strings.Join(strings.Fields(arg), ","))
		if err != nil {
			log.Printf("input: %v", err)
			return quietState
		}
		d.push(vs)
		return stepState
	case "a", "ascii":
		d.push(asciiLine(arg))
		return stepState
	case "dump":
		if arg == "" {
			log.Print("usage: dump <file>")
			return quietState
		}
		if err := d.dump(arg); err != nil {
			log.Printf("dump: %v", err)
			return quietState
		}
		log.Printf("wrote %d words to %s", d.m.Len(), arg)
	default:
		log.Printf("unknown command %q", cmd)
	}
	return quietState
}

// steps executes up to n instructions, or until a break if n < 0.
// d.mu must be held.
func (d *debugger) steps(n int) stateKind {
	d.pause.Store(false)
	for i := 0; n < 0 || i < n; i++ {
		if d.m.Halted() {
			return haltState
		}
		st, err := d.m.Step()
		d.drain()
		if err != nil {
			log.Printf("fault: %v", err)
			return haltState
		}
		switch st {
		case vm.Halted:
			log.Printf("halted after %d steps", d.m.Steps())
			return haltState
		case vm.InputEmpty:
			return inputState
		case vm.OutputFull:
			return outputState
		}
		if d.isBreak(d.m.PC()) {
			return breakState
		}
		if d.pause.Load() {
			return pauseState
		}
	}
	return stepState
}

func (d *debugger) isBreak(pc int64) bool {
	for _, s := range d.brks {
		if s.addr == pc {
			return true
		}
	}
	return false
}

func (d *debugger) drain() {
	for _, v := range d.m.Outputs() {
		log.Printf("out: %d", v)
	}
}

func (d *debugger) push(vs []int64) {
	if n := feed(d.m, vs); n < len(vs) {
		log.Printf("input queue full, dropped %v", vs[n:])
	}
}

func (d *debugger) dump(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := vm.Format(f, d.m.Memory()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *debugger) refresh(k stateKind) {
	d.mu.Lock()
	var watch, state string
	if d.m != nil {
		watch = watchContent(d.m, d.brks, d.watches)
		state = stateMsg(d.syms, d.m, k)
	}
	d.mu.Unlock()
	d.app.QueueUpdateDraw(func() {
		switch k {
		case stepState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case breakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case inputState, outputState, pauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case haltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != quietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(syms symbols, m *vm.Machine, k stateKind) string {
	var (
		pc     = m.PC()
		ins, _ = vm.Disasm(m.Memory(), int(pc))
		pcSym  string
		kind   = "       "
	)
	if s := syms.forAddr(pc); len(s) > 0 {
		pcSym = s[0].String()
	}
	switch k {
	case breakState:
		kind = "[break]"
	case inputState:
		kind = "[input]"
	case outputState:
		kind = "[outpt]"
	case pauseState:
		kind = "[pause]"
	case haltState:
		kind = "[HALT!]"
	}
	return fmt.Sprintf("%.4d %-24s %s %s\nrb: %d steps: %d\nin: %v out: %v\n",
		pc, ins, kind, pcSym, m.RBP(), m.Steps(), m.Input(), m.Output())
}

func watchContent(m *vm.Machine, brks, watches []symbol) string {
	var b strings.Builder
	for _, s := range brks {
		fmt.Fprintf(&b, "%s brk!\n", s)
	}
	for _, w := range watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if v, err := m.Mem(w.addr); err != nil {
			fmt.Fprintf(&b, "%s ?", w)
		} else {
			fmt.Fprintf(&b, "%s %d", w, v)
		}
	}
	return b.String()
}
