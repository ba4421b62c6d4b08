package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "prog.sym")
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestSymbols(t *testing.T) {
	syms, err := parseSymbols(writeFile(t, "# labels\n\n4 loop\n0 start\n  4 again\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := symbols{{0, "start"}, {4, "loop"}, {4, "again"}}
	if len(syms) != len(want) {
		t.Fatalf("got %v, want %v", syms, want)
	}
	for i := range want {
		if syms[i] != want[i] {
			t.Errorf("symbol %d = %v, want %v", i, syms[i], want[i])
		}
	}

	if got := syms.forAddr(4); len(got) != 2 || got[0].label != "loop" {
		t.Errorf("forAddr(4) = %v", got)
	}
	if got := syms.forAddr(2); len(got) != 0 {
		t.Errorf("forAddr(2) = %v", got)
	}
	if got := syms.withLabelPrefix("a"); len(got) != 1 || got[0].label != "again" {
		t.Errorf("withLabelPrefix(a) = %v", got)
	}

	for _, c := range []struct {
		arg  string
		want symbol
		ok   bool
	}{
		{"loop", symbol{4, "loop"}, true},
		{"4", symbol{4, "loop"}, true},
		{"17", symbol{17, "17"}, true},
		{"-1", symbol{}, false},
		{"nope", symbol{}, false},
	} {
		got, ok := syms.resolve(c.arg)
		if got != c.want || ok != c.ok {
			t.Errorf("resolve(%q) = %v, %v, want %v, %v", c.arg, got, ok, c.want, c.ok)
		}
	}
	if got, want := (symbol{4, "loop"}).String(), "loop (4)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSymbolErrors(t *testing.T) {
	for _, content := range []string{"x y\n", "1 2 3\n", "-4 neg\n", "5\n"} {
		if _, err := parseSymbols(writeFile(t, content)); err == nil {
			t.Errorf("parseSymbols(%q) succeeded", content)
		}
	}
	if _, err := parseSymbols(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("parseSymbols of missing file succeeded")
	}
}
