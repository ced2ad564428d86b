// drive_35.go - 3.5" drive command/query protocol, grounded on
// clem_drive35.c: CTL/QUERY constants, status bits, and timing constants.

package main

// Disk35 query selectors, matching clem_drive35.c's
// CLEM_IWM_DISK35_QUERY_* constants.
const (
	Disk35QueryStepDirection = 0
	Disk35QueryDiskInDrive   = 1
	Disk35QueryIsStepping    = 2
	Disk35QueryWriteProtect  = 4
	Disk35QueryMotorOn       = 5
	Disk35QueryTrack0        = 6
	Disk35QueryEjected       = 7
	Disk35Query60HzRotation  = 8
	Disk35QueryIOHeadLower   = 9
	Disk35QueryIOHeadUpper   = 10
	Disk35QueryDoubleSided   = 11
	Disk35QueryReadReady     = 12
	Disk35QueryEnabled       = 14
)

// Disk35 control selectors, matching CLEM_IWM_DISK35_CTL_*.
const (
	Disk35CtlStepIn       = 0
	Disk35CtlStepOut      = 1
	Disk35CtlEjectedReset = 3
	Disk35CtlStepOne      = 4
	Disk35CtlMotorOn      = 5
	Disk35CtlMotorOff     = 6
	Disk35CtlEject        = 7
)

const (
	disk35StatusStepIn    = 0x0001
	disk35StatusIOHeadHi  = 0x0002
	disk35StatusEjected   = 0x0008
	disk35StatusEjecting  = 0x0010
	disk35StatusStrobe    = 0x8000

	disk35StepTimeNs  = 12000
	disk35EjectTimeNs = 500000000
)

// Drive35 models one 3.5" drive including its command/query protocol,
// which (unlike the 5.25" drive) is addressed via PHASE0-3 encoding a
// selector rather than raw stepper-magnet lines.
type Drive35 struct {
	ctlSwitch   uint16
	status      uint16
	track       int
	motorOn     bool
	writeProtect bool
	doubleSided bool
	ejecting    bool
	ejectTimer  int64
	stepTimer   int64
	image       *WozImage
}

func NewDrive35() *Drive35 {
	return &Drive35{doubleSided: true}
}

func (d *Drive35) InsertDisk(img *WozImage) {
	d.image = img
	d.writeProtect = img.WriteProtect
	d.status &^= disk35StatusEjected
}

func (d *Drive35) EjectDisk() {
	d.ejecting = true
	d.ejectTimer = disk35EjectTimeNs
}

// SetCtlSwitch packs HEAD_SEL/PHASE0-2 into the control-switch word per
// clem_drive35.c's ctl_switch bit-packing formula.
func (d *Drive35) SetCtlSwitch(headSel, phase0, phase1, phase2 bool) {
	v := uint16(0)
	if headSel {
		v |= 1 << 1
	}
	if phase2 {
		v |= 1 << 0
	}
	if phase0 {
		v |= 1 << 2
	}
	if phase1 {
		v |= 1 << 3
	}
	d.ctlSwitch = v
}

// Control dispatches a CLEM_IWM_DISK35_CTL_* selector.
func (d *Drive35) Control(selector int) {
	switch selector {
	case Disk35CtlStepIn:
		d.step(1)
	case Disk35CtlStepOut:
		d.step(-1)
	case Disk35CtlEjectedReset:
		d.status &^= disk35StatusEjected
	case Disk35CtlStepOne:
		d.stepTimer = disk35StepTimeNs
	case Disk35CtlMotorOn:
		d.motorOn = true
	case Disk35CtlMotorOff:
		d.motorOn = false
	case Disk35CtlEject:
		d.EjectDisk()
	}
}

func (d *Drive35) step(delta int) {
	d.track += delta
	if d.track < 0 {
		d.track = 0
	}
	if d.track > 159 {
		d.track = 159
	}
	d.stepTimer = disk35StepTimeNs
}

// Query dispatches a CLEM_IWM_DISK35_QUERY_* selector and returns its
// single-bit answer.
func (d *Drive35) Query(selector int) bool {
	switch selector {
	case Disk35QueryStepDirection:
		return d.ctlSwitch&0x04 != 0
	case Disk35QueryDiskInDrive:
		return d.image != nil
	case Disk35QueryIsStepping:
		return d.stepTimer > 0
	case Disk35QueryWriteProtect:
		return d.writeProtect
	case Disk35QueryMotorOn:
		return d.motorOn
	case Disk35QueryTrack0:
		return d.track == 0
	case Disk35QueryEjected:
		return d.status&disk35StatusEjected != 0
	case Disk35Query60HzRotation:
		// No real hardware signal backs this query (clem_drive35.c's
		// handler is a bare assert(true)); always returns false per
		// spec.md's resolution.
		return false
	case Disk35QueryIOHeadLower:
		return d.ctlSwitch&0x02 == 0
	case Disk35QueryIOHeadUpper:
		return d.ctlSwitch&0x02 != 0
	case Disk35QueryDoubleSided:
		return d.doubleSided
	case Disk35QueryReadReady:
		return d.image != nil && !d.ejecting
	case Disk35QueryEnabled:
		return d.motorOn
	default:
		return false
	}
}

// Tick advances step/eject timers by the elapsed nanoseconds.
func (d *Drive35) Tick(elapsedNs int64) {
	if d.stepTimer > 0 {
		d.stepTimer -= elapsedNs
		if d.stepTimer < 0 {
			d.stepTimer = 0
		}
	}
	if d.ejecting {
		d.ejectTimer -= elapsedNs
		if d.ejectTimer <= 0 {
			d.ejecting = false
			d.status |= disk35StatusEjected
			d.image = nil
		}
	}
}
