package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nf/intcode/screen"
	"github.com/nf/intcode/vm"
)

// showDisplay opens the display window; tests replace it.
var showDisplay = screen.Show

// Tile values the joystick follows.
const (
	paddleTile = 3
	ballTile   = 4
)

// display runs m with its output drawn on a tile display. Once the -input
// values are used up, input requests are answered with a joystick position
// that moves the paddle towards the ball.
func (r *runner) display(m *vm.Machine) error {
	d := screen.New()
	play := func() error {
		input := r.input
		for {
			st, err := m.Execute()
			if err != nil {
				return err
			}
			d.Feed(m)
			switch st {
			case vm.Halted:
				return nil
			case vm.InputEmpty:
				if len(input) > 0 {
					input = input[feed(m, input):]
				} else {
					m.PushInput(joystick(d))
				}
			}
		}
	}

	if r.gui {
		errc := make(chan error, 1)
		go func() {
			err := play()
			if err == nil {
				log.Printf("halted after %d steps", m.Steps())
			}
			errc <- err
		}()
		if err := showDisplay("intcode", d, r.scale, nil); err != nil {
			return err
		}
		select {
		case err := <-errc:
			if err != nil {
				return err
			}
		default:
			log.Print("window closed before the program halted")
		}
	} else if err := play(); err != nil {
		return err
	}

	if r.png != "" {
		f, err := os.Create(r.png)
		if err != nil {
			return err
		}
		if err := d.WritePNG(f, r.scale); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	fmt.Fprint(r.stdout, d.Text())
	fmt.Fprintf(r.stdout, "status: %d\n", d.Status())
	return nil
}

// joystick returns -1, 0 or 1 to move the paddle towards the ball.
func joystick(d *screen.Display) int64 {
	bx, _, ok1 := d.Find(ballTile)
	px, _, ok2 := d.Find(paddleTile)
	switch {
	case !ok1 || !ok2 || bx == px:
		return 0
	case bx < px:
		return -1
	default:
		return 1
	}
}
