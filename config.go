// config.go - CLI configuration, grounded on the teacher's main.go flag
// handling and boilerPlate()/printFeatures() banner idiom (features.go).

package main

import (
	"flag"
	"fmt"
)

// Config resolves the inputs a Machine needs to boot: ROM image, up to two
// WOZ disk images, and debug/trace options.
type Config struct {
	ROMPath      string
	Disk525Path  string
	Disk35Path   string
	TraceOpcodes bool
	AudioBackend string
	Breakpoints  []uint
	Video        string
	Terminal     bool
}

// ParseConfig parses os.Args-style arguments into a Config, in the same
// flag.Parse + banner style the teacher's main.go/features.go use.
func ParseConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("clemcore", flag.ContinueOnError)
	cfg := &Config{}
	fs.StringVar(&cfg.ROMPath, "rom", "", "path to a 256KiB ROM 3 image")
	fs.StringVar(&cfg.Disk525Path, "d1", "", "WOZ image for the 5.25\" drive (slot 6)")
	fs.StringVar(&cfg.Disk35Path, "d2", "", "WOZ image for the 3.5\" drive (slot 5)")
	fs.BoolVar(&cfg.TraceOpcodes, "trace", false, "log every executed opcode")
	fs.StringVar(&cfg.AudioBackend, "audio", "oto", "audio backend: oto or headless")
	fs.StringVar(&cfg.Video, "video", "headless", "video sink: ebiten or headless")
	fs.BoolVar(&cfg.Terminal, "terminal", false, "read stdin through the raw-mode terminal host into a TerminalMMIO")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ROMPath == "" {
		return nil, fmt.Errorf("config: -rom is required")
	}
	return cfg, nil
}

func (c *Config) Banner() string {
	return fmt.Sprintf("clemcore — Apple IIGS core (rom=%s d1=%s d2=%s trace=%v audio=%s)",
		c.ROMPath, c.Disk525Path, c.Disk35Path, c.TraceOpcodes, c.AudioBackend)
}
