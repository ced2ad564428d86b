// main.go - entry point, adapted from the teacher's boilerPlate()/argument
// handling idiom in its own main.go to boot an Apple IIGS core instead of
// the teacher's IE32/M68K CPU selection.

package main

import (
	"fmt"
	"log"
	"os"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;100;180;255mclemcore\033[0m — a cycle-level Apple IIGS core")
	fmt.Println("65C816 + Memory Mapping Controller + IWM/WOZ floppy emulation")
}

func main() {
	boilerPlate()

	cfg, err := ParseConfig(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println(cfg.Banner())

	logger := log.New(os.Stderr, "", log.LstdFlags)
	inner := NewLogDebugSink(logger, cfg.TraceOpcodes)
	debug := NewCountingDebugSink(inner, 256)

	var audioSink AudioSink
	if cfg.AudioBackend == "oto" {
		sink, err := NewOtoAudioSink(44100)
		if err != nil {
			fmt.Printf("audio init failed, continuing headless: %v\n", err)
		} else {
			audioSink = sink
			defer sink.Close()
		}
	}

	machine := NewMachine(cfg, debug, audioSink)

	var termMMIO *TerminalMMIO
	if cfg.Terminal {
		termMMIO = NewTerminalMMIO()
	}
	pump := NewInputPump(machine, termMMIO)
	pump.Start()
	defer pump.Stop()

	var view *EbitenScanlineView
	if cfg.Video == "ebiten" {
		view = NewEbitenScanlineView()
		view.AttachMonitor(machine.Monitor)
		view.Start()
	}

	rom, err := os.ReadFile(cfg.ROMPath)
	if err != nil {
		fmt.Printf("failed to read ROM: %v\n", err)
		os.Exit(1)
	}
	if err := machine.Boot(rom); err != nil {
		fmt.Printf("boot failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.Disk525Path != "" {
		data, err := os.ReadFile(cfg.Disk525Path)
		if err != nil {
			fmt.Printf("failed to read 5.25\" image: %v\n", err)
			os.Exit(1)
		}
		if err := machine.InsertWOZ525(0, data); err != nil {
			fmt.Printf("failed to parse 5.25\" WOZ image: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.Disk35Path != "" {
		data, err := os.ReadFile(cfg.Disk35Path)
		if err != nil {
			fmt.Printf("failed to read 3.5\" image: %v\n", err)
			os.Exit(1)
		}
		if err := machine.InsertWOZ35(0, data); err != nil {
			fmt.Printf("failed to parse 3.5\" WOZ image: %v\n", err)
			os.Exit(1)
		}
	}

	for !machine.CPU.stopped.Load() {
		machine.Emulate()
		if view != nil {
			view.Push(machine.Snapshot())
		}
	}
}
