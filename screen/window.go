package screen

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	shiny "golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// Show opens a window titled title and redraws d whenever it changes,
// until exit is closed or the window is closed.
func Show(title string, d *Display, scale int, exit <-chan bool) error {
	var err error
	driver.Main(func(s shiny.Screen) {
		r := d.Image(scale).Bounds()
		w, werr := s.NewWindow(&shiny.NewWindowOptions{
			Title:  title,
			Width:  max(r.Dx(), 256),
			Height: max(r.Dy(), 256),
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		type update struct{}
		done := make(chan bool)
		defer close(done)
		go func() {
			t := time.NewTicker(time.Second / 30)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					return
				case <-done:
					return
				}
			}
		}()

		var (
			sz    size.Event
			buf   shiny.Buffer
			tex   shiny.Texture
			drawn = -1
		)
		release := func() {
			if tex != nil {
				tex.Release()
				tex = nil
			}
			if buf != nil {
				buf.Release()
				buf = nil
			}
		}
		defer release()

		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				drawn = -1

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}

			case paint.Event:
				drawn = -1

			case update:
				if n := d.Updates(); n != drawn {
					drawn = n
					m := d.Image(scale)
					if buf == nil || buf.Size() != m.Rect.Size() {
						release()
						if buf, err = s.NewBuffer(m.Rect.Size()); err != nil {
							return
						}
						if tex, err = s.NewTexture(m.Rect.Size()); err != nil {
							return
						}
					}
					draw.Draw(buf.RGBA(), buf.Bounds(), m, image.Point{}, draw.Src)
					tex.Upload(image.Point{}, buf, buf.Bounds())
					w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
					w.Publish()
				}

			case error:
				log.Print(e)
			}
		}
	})
	return err
}
