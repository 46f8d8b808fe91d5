package topology

import "strings"

// Address is a short textual identifier for a device. The first character
// denotes kind ('M' = machine, 'R' = router); the remainder distinguishes
// instances. Canonical form is uppercase; comparisons elsewhere in the
// package always work against the canonical form.
type Address string

// Canonical returns the uppercased form of the address, the form under
// which it is stored in the address index and compared for equality.
func (a Address) Canonical() Address {
	return Address(strings.ToUpper(string(a)))
}

// Kind reports the DeviceKind implied by the address's leading character.
func (a Address) Kind() (DeviceKind, bool) {
	c := a.Canonical()
	if len(c) == 0 {
		return 0, false
	}
	switch c[0] {
	case 'M':
		return MachineKind, true
	case 'R':
		return RouterKind, true
	default:
		return 0, false
	}
}

// DeviceKind distinguishes the two device sum-type variants.
type DeviceKind int

const (
	MachineKind DeviceKind = iota
	RouterKind
)

// String renders a DeviceKind for diagnostics and trace output.
func (k DeviceKind) String() string {
	switch k {
	case MachineKind:
		return "Machine"
	case RouterKind:
		return "Router"
	default:
		return "Unknown"
	}
}
