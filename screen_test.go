package main

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nf/intcode/screen"
)

func TestDisplayMode(t *testing.T) {
	prog := []int64{
		104, 1, 104, 1, 104, 3, // paddle at (1, 1)
		104, 2, 104, 0, 104, 4, // ball at (2, 0)
		3, 60, // joystick
		104, -1, 104, 0, 4, 60, // status = joystick
		99,
	}
	pngFile := filepath.Join(t.TempDir(), "out.png")
	r, out := newRunner()
	r.screen = true
	r.png = pngFile
	r.scale = 2
	if err := r.run(prog); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), " o\n- \nstatus: 1\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	f, err := os.Open(pngFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 4 || cfg.Height != 4 {
		t.Errorf("image is %dx%d, want 4x4", cfg.Width, cfg.Height)
	}
}

func TestDisplayModeInput(t *testing.T) {
	r, out := newRunner(-7)
	r.screen = true
	if err := r.run([]int64{3, 20, 104, -1, 104, 0, 4, 20, 99}); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "status: -7\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDisplayModeWindowClosed(t *testing.T) {
	// Draws one block then counts down from [100] for a very long time.
	prog := []int64{
		104, 0, 104, 0, 104, 2,
		1001, 100, -1, 100, // ADD [100], -1, [100]
		1005, 100, 6, // JNZ [100], 6
		99,
	}
	defer func(f func(string, *screen.Display, int, <-chan bool) error) { showDisplay = f }(showDisplay)
	showDisplay = func(_ string, d *screen.Display, _ int, _ <-chan bool) error {
		for d.Updates() == 0 {
			time.Sleep(time.Millisecond)
		}
		return nil
	}

	pngFile := filepath.Join(t.TempDir(), "out.png")
	r, out := newRunner()
	r.gui = true
	r.screen = true
	r.png = pngFile
	r.pokes = pokeList{{100, 1 << 40}}
	if err := r.run(prog); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "=\nstatus: 0\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if _, err := os.Stat(pngFile); err != nil {
		t.Errorf("image not written: %v", err)
	}
}

func TestDisplayModeWindowError(t *testing.T) {
	defer func(f func(string, *screen.Display, int, <-chan bool) error) { showDisplay = f }(showDisplay)
	errNoDisplay := errors.New("no display")
	showDisplay = func(string, *screen.Display, int, <-chan bool) error { return errNoDisplay }

	r, _ := newRunner()
	r.gui = true
	r.screen = true
	if err := r.run([]int64{99}); err != errNoDisplay {
		t.Errorf("run = %v, want %v", err, errNoDisplay)
	}
}

func TestJoystick(t *testing.T) {
	for _, c := range []struct {
		ball, paddle int64
		want         int64
	}{
		{5, 2, 1},
		{2, 5, -1},
		{3, 3, 0},
	} {
		d := screen.New()
		d.Set(c.ball, 1, ballTile)
		d.Set(c.paddle, 9, paddleTile)
		if got := joystick(d); got != c.want {
			t.Errorf("ball %d paddle %d: joystick = %d, want %d", c.ball, c.paddle, got, c.want)
		}
	}
	if got := joystick(screen.New()); got != 0 {
		t.Errorf("empty display: joystick = %d, want 0", got)
	}
}
