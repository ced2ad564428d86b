//go:build headless

// clemcore_headless.go - headless-build stubs for the oto audio sink,
// ebiten viewer, and host input pump, mirroring the teacher's
// audio_backend_headless.go/video_backend_headless.go no-op pattern so
// main.go compiles the same way under both build tags.

package main

func init() {
	compiledFeatures = append(compiledFeatures, "audio:headless", "video:headless")
}

// OtoAudioSink is a no-op stand-in for the oto-backed sink.
type OtoAudioSink struct{}

func NewOtoAudioSink(sampleRate int) (*OtoAudioSink, error) {
	return &OtoAudioSink{}, nil
}

func (s *OtoAudioSink) Write(samples []byte) {}
func (s *OtoAudioSink) Close()                {}

// EbitenScanlineView is a no-op stand-in for the ebiten viewer.
type EbitenScanlineView struct{}

func NewEbitenScanlineView() *EbitenScanlineView        { return &EbitenScanlineView{} }
func (v *EbitenScanlineView) Start()                    {}
func (v *EbitenScanlineView) Push(snap MachineSnapshot) {}
func (v *EbitenScanlineView) AttachMonitor(m *MachineMonitor) {}

// InputPump is a no-op stand-in; headless runs have no terminal or
// clipboard to pump from.
type InputPump struct{}

func NewInputPump(m *Machine, termMMIO *TerminalMMIO) *InputPump { return &InputPump{} }
func (p *InputPump) Start()                                      {}
func (p *InputPump) Stop()                                       {}
