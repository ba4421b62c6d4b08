// Command intcode runs intcode programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nf/intcode/vm"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		inputFlag    = flag.String("input", "", "comma-separated `values` to queue as input")
		asciiFlag    = flag.Bool("ascii", false, "exchange ASCII text with the program on stdin and stdout")
		traceFlag    = flag.Bool("trace", false, "mirror input and output values below 256 to stderr")
		fixedFlag    = flag.Int("fixed", 0, "use fixed memory of `n` words instead of growing it")
		queueFlag    = flag.Int("queue", vm.DefaultQueueSize, "input and output queue `size`")
		dropFlag     = flag.Bool("drop", false, "discard output values when the output queue is full")
		ampFlag      = flag.String("amp", "", "run an amplifier ring for every ordering of `phases`")
		feedbackFlag = flag.Bool("feedback", false, "same as -amp 5,6,7,8,9")
		networkFlag  = flag.Int("network", 0, "run a packet network of `n` nodes")
		screenFlag   = flag.Bool("screen", false, "draw output triples on a tile display")
		guiFlag      = flag.Bool("gui", false, "show the tile display in a window (implies -screen)")
		pngFlag      = flag.String("png", "", "write the tile display to `file` (implies -screen)")
		scaleFlag    = flag.Int("scale", 8, "tile size in pixels for -gui and -png")
		symFlag      = flag.String("sym", "", "read address labels from `file`")
		devFlag      = flag.Bool("dev", false, "enable developer mode (re-run when the program file changes)")
		debugFlag    = flag.Bool("debug", false, "enable debugger (implies -dev)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")

		part1, part2 optInt
		pokes        pokeList
	)
	flag.Var(&part1, "part1", "run with the single input `v` and print the last output")
	flag.Var(&part2, "part2", "like -part1, for a second run from a fresh load")
	flag.Var(&pokes, "set", "set memory before running, as `addr=value` (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] <-dev | -debug> <program>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(-1)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	input, err := parseValues(*inputFlag)
	if err != nil {
		log.Printf("-input: %v", err)
		flag.Usage()
	}
	if *feedbackFlag && *ampFlag == "" {
		*ampFlag = "5,6,7,8,9"
	}
	var trace io.Writer
	if *traceFlag {
		trace = os.Stderr
	}
	r := &runner{
		opts:   options(*fixedFlag, *queueFlag, *dropFlag, trace),
		input:  input,
		pokes:  pokes,
		ascii:  *asciiFlag,
		screen: *screenFlag || *guiFlag || *pngFlag != "",
		gui:    *guiFlag,
		png:    *pngFlag,
		scale:  *scaleFlag,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	if _, err := vm.New(r.opts...); err != nil {
		log.Print(err)
		flag.Usage()
	}

	if *devFlag || *debugFlag {
		if err := devMode(r, flag.Arg(0), *symFlag, *debugFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	prog, err := vm.ReadFile(flag.Arg(0))
	if err != nil {
		log.Print(err)
		os.Exit(-1)
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	switch {
	case *ampFlag != "":
		err = r.amplify(prog, *ampFlag)
	case *networkFlag > 0:
		err = r.network(prog, *networkFlag)
	case part1.set || part2.set:
		err = r.parts(prog, part1, part2)
	default:
		err = r.run(prog)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func options(fixed, queue int, drop bool, trace io.Writer) []vm.Option {
	opts := []vm.Option{vm.QueueSize(queue)}
	if fixed > 0 {
		opts = append(opts, vm.FixedMemory(fixed))
	}
	if drop {
		opts = append(opts, vm.OnOutputFull(vm.Drop))
	}
	if trace != nil {
		opts = append(opts, vm.Trace(trace))
	}
	return opts
}

// parseValues parses a comma-separated list of integers.
func parseValues(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var vs []int64
	for i, f := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// optInt is an integer flag that records whether it was set.
type optInt struct {
	v   int64
	set bool
}

func (o *optInt) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatInt(o.v, 10)
}

func (o *optInt) Set(s string) (err error) {
	o.v, err = strconv.ParseInt(s, 10, 64)
	o.set = err == nil
	return err
}

type poke struct{ addr, v int64 }

// pokeList is a repeatable addr=value flag.
type pokeList []poke

func (l *pokeList) String() string {
	if l == nil {
		return ""
	}
	var s []string
	for _, p := range *l {
		s = append(s, fmt.Sprintf("%d=%d", p.addr, p.v))
	}
	return strings.Join(s, ",")
}

func (l *pokeList) Set(s string) error {
	a, v, ok := strings.Cut(s, "=")
	if !ok {
		return errors.Errorf("%q is not addr=value", s)
	}
	vs, err := parseValues(a + "," + v)
	if err != nil {
		return err
	}
	if vs[0] < 0 {
		return errors.Errorf("negative address %d", vs[0])
	}
	*l = append(*l, poke{vs[0], vs[1]})
	return nil
}
