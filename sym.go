package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// symbols is a list of address labels sorted by address.
type symbols []symbol

func (s symbols) forAddr(addr int64) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol named by arg, which is a label or an address.
func (s symbols) resolve(arg string) (symbol, bool) {
	if addr, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if addr < 0 {
			return symbol{}, false
		}
		sym := symbol{addr: addr, label: arg}
		if ss := s.forAddr(addr); len(ss) > 0 {
			sym.label = ss[0].label
		}
		return sym, true
	}
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	return symbol{}, false
}

type symbol struct {
	addr  int64
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%d)", s.label, s.addr) }

// parseSymbols reads a label file: one "addr label" pair per line, with
// blank lines and lines starting with # ignored.
func parseSymbols(symFile string) (symbols, error) {
	f, err := os.Open(symFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var (
		ss symbols
		sc = bufio.NewScanner(f)
		n  = 0
	)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Errorf("%s:%d: want address and label", symFile, n)
		}
		addr, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || addr < 0 {
			return nil, errors.Errorf("%s:%d: invalid address %q", symFile, n, fields[0])
		}
		ss = append(ss, symbol{addr: addr, label: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, symFile)
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}
