package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/vm"
)

// devMode watches the program file (and label file, if any) and re-runs the
// program whenever it changes. With debug set, the program is loaded into
// the debugger instead of being run.
func devMode(r *runner, file, symFile string, debug bool) error {
	file = filepath.Clean(file)
	if symFile != "" {
		symFile = filepath.Clean(symFile)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	dirs := map[string]bool{filepath.Dir(file): true}
	if symFile != "" {
		dirs[filepath.Dir(symFile)] = true
	}
	for dir := range dirs {
		if err := watcher.Watch(dir); err != nil {
			return err
		}
	}

	var d *debugger
	if debug {
		d = newDebugger(r)
		log.SetPrefix("")
		log.SetOutput(d.log)
		defer func() {
			log.SetOutput(os.Stderr)
			log.SetPrefix("intcode: ")
		}()
	}

	reload := func() {
		prog, err := vm.ReadFile(file)
		if err != nil {
			log.Printf("dev: %v", err)
			return
		}
		if d == nil {
			log.Printf("dev: run %s", filepath.Base(file))
			if err := r.run(prog); err != nil {
				log.Printf("dev: %v", err)
			}
			return
		}
		if symFile != "" {
			syms, err := parseSymbols(symFile)
			if err != nil {
				log.Printf("dev: reading labels: %v", err)
			} else {
				d.setSymbols(syms)
			}
		}
		log.Printf("dev: load %s", filepath.Base(file))
		d.load(prog)
	}

	done := make(chan bool)
	go func() {
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				reload()
			case ev := <-watcher.Event:
				if (ev.Name == file || ev.Name == symFile) && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			case <-done:
				return
			}
		}
	}()

	if d == nil {
		select {}
	}
	err = d.Run()
	close(done)
	return err
}
