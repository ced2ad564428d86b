// debug_ioview.go - I/O register viewer for Machine Monitor, adapted to the
// IIGS C0xx softswitch/device register map (spec.md §4.4) in place of the
// teacher's per-machine register tables.

package main

import "fmt"

// IORegisterDesc describes a single I/O register for display.
type IORegisterDesc struct {
	Name   string
	Addr   uint32
	Width  int    // always 1 for C0xx registers
	Access string // "RW", "RO", "WO"
}

// IODeviceDesc describes a group of I/O registers for a device.
type IODeviceDesc struct {
	Name      string
	Registers []IORegisterDesc
}

var ioDevices = map[string]*IODeviceDesc{
	"adb": {
		Name: "ADB",
		Registers: []IORegisterDesc{
			{"KEYBOARD", 0xC000, 1, "RO"},
			{"CLEAR_STROBE", 0xC010, 1, "RO"},
			{"MOUSE_X", 0xC024, 1, "RO"},
			{"MOUSE_Y", 0xC026, 1, "RO"},
			{"MOUSE_BTN", 0xC027, 1, "RO"},
		},
	},
	"rtc": {
		Name: "RTC",
		Registers: []IORegisterDesc{
			{"DATA", 0xC033, 1, "RW"},
			{"CTRL", 0xC034, 1, "RW"},
		},
	},
	"scc": {
		Name: "SCC",
		Registers: []IORegisterDesc{
			{"DATA_B", 0xC038, 1, "RW"},
			{"CMD_B", 0xC039, 1, "RW"},
			{"DATA_A", 0xC03A, 1, "RW"},
			{"CMD_A", 0xC03B, 1, "RW"},
		},
	},
	"audio": {
		Name: "DOC Audio",
		Registers: []IORegisterDesc{
			{"DATA", 0xC03C, 1, "RW"},
			{"ADDR_LO", 0xC03D, 1, "RW"},
			{"ADDR_HI", 0xC03E, 1, "RW"},
			{"CTRL", 0xC03F, 1, "RW"},
		},
	},
	"timer": {
		Name: "Timer",
		Registers: []IORegisterDesc{
			{"VBL_FLAG", 0xC019, 1, "RO"},
			{"TEXT_FLAG", 0xC023, 1, "RO"},
			{"CLEAR_ALL", 0xC032, 1, "RW"},
			{"IRQ_ENABLE", 0xC041, 1, "RW"},
			{"CLEAR_VBL", 0xC046, 1, "RW"},
			{"CLEAR_QTRSEC", 0xC047, 1, "RW"},
		},
	},
	"vgc": {
		Name: "VGC",
		Registers: []IORegisterDesc{
			{"TEXT_COLOR", 0xC022, 1, "RW"},
			{"NEWVIDEO", 0xC029, 1, "RW"},
			{"TEXT_OFF", 0xC050, 1, "RW"},
			{"TEXT_ON", 0xC051, 1, "RW"},
			{"MIXED_OFF", 0xC052, 1, "RW"},
			{"MIXED_ON", 0xC053, 1, "RW"},
			{"PAGE2_OFF", 0xC054, 1, "RW"},
			{"PAGE2_ON", 0xC055, 1, "RW"},
			{"HIRES_OFF", 0xC056, 1, "RW"},
			{"HIRES_ON", 0xC057, 1, "RW"},
		},
	},
	"iwm": {
		Name: "IWM",
		Registers: []IORegisterDesc{
			{"PHASE0_OFF", 0xC0E0, 1, "RW"},
			{"PHASE0_ON", 0xC0E1, 1, "RW"},
			{"PHASE1_OFF", 0xC0E2, 1, "RW"},
			{"PHASE1_ON", 0xC0E3, 1, "RW"},
			{"PHASE2_OFF", 0xC0E4, 1, "RW"},
			{"PHASE2_ON", 0xC0E5, 1, "RW"},
			{"PHASE3_OFF", 0xC0E6, 1, "RW"},
			{"PHASE3_ON", 0xC0E7, 1, "RW"},
			{"MOTOR_OFF", 0xC0E8, 1, "RW"},
			{"MOTOR_ON", 0xC0E9, 1, "RW"},
			{"DRIVE_0", 0xC0EA, 1, "RW"},
			{"DRIVE_1", 0xC0EB, 1, "RW"},
			{"Q6_LO", 0xC0EC, 1, "RW"},
			{"Q6_HI", 0xC0ED, 1, "RW"},
			{"Q7_LO", 0xC0EE, 1, "RW"},
			{"Q7_HI", 0xC0EF, 1, "RW"},
		},
	},
	"langcard": {
		Name: "Language Card",
		Registers: []IORegisterDesc{
			{"SWITCH", 0xC068, 1, "RW"},
			{"STATUS", 0xC071, 1, "RO"},
		},
	},
}

// formatIOView renders the register view for a device.
func formatIOView(cpu DebuggableCPU, deviceName string) []string {
	dev, ok := ioDevices[deviceName]
	if !ok {
		return []string{fmt.Sprintf("Unknown device: %s", deviceName)}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("--- %s Registers ---", dev.Name))

	for _, reg := range dev.Registers {
		data := cpu.ReadMemory(uint64(reg.Addr), reg.Width)
		if len(data) < reg.Width {
			lines = append(lines, fmt.Sprintf("  %-14s ($%04X) = ?? [%s]", reg.Name, reg.Addr, reg.Access))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-14s ($%04X) = $%02X [%s]", reg.Name, reg.Addr, data[0], reg.Access))
	}

	return lines
}

// listIODevices returns the names of all available IO devices.
func listIODevices() []string {
	return []string{"adb", "rtc", "scc", "audio", "timer", "vgc", "iwm", "langcard"}
}
