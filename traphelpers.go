// traphelpers.go - A-line opcode bit layout.
//
// Toolbox: 1010 | 1 A _ _ | _ _ _ _ | _ _ _ _
// OS:      1010 | 0 F F R | _ _ _ _ | _ _ _ _
// F = flags, _ = trap number, A = auto-pop bit, R = return/save-A0 bit.
//
// Grounded on emu/trap/trap_helpers.h.

package main

// isToolbox reports whether bit 11 (the OS/Toolbox selector) is set.
func isToolbox(trap uint16) bool { return (trap>>11)&1 != 0 }

// isSystemTrap reports whether trap is an OS (non-Toolbox) trap.
func isSystemTrap(trap uint16) bool { return !isToolbox(trap) }

// extractIndex returns the 10-bit (Toolbox) or 8-bit (OS) trap index.
func extractIndex(trap uint16) int {
	if isToolbox(trap) {
		return int(trap & 0x03FF)
	}
	return int(trap & 0x00FF)
}

// isAutoPopSet reports whether a Toolbox trap's auto-pop bit (bit 10)
// is set: the trap was reached through a glue routine, so the 32-bit
// glue return address sitting on the stack must be popped and used as
// the real return address instead of "instruction + 2".
func isAutoPopSet(trap uint16) bool {
	return isToolbox(trap) && (trap>>10)&1 != 0
}

// extractFlags returns the two reserved flag bits (10-9) of an OS trap.
// Decoded for parity with the original but never consulted by any
// handler, matching trap_helpers.h.
func extractFlags(trap uint16) uint8 {
	return uint8((trap >> 9) & 0x03)
}

// shouldSaveA0 reports whether A0 must be saved/restored around an OS
// trap call: true when bit 8 (the "R"/save-A0 bit) is clear.
func shouldSaveA0(trap uint16) bool {
	return isSystemTrap(trap) && (trap>>8)&1 == 0
}
