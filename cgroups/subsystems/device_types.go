package subsystems

import (
	"strings"
)

// DeviceType is the class of device a rule applies to.
type DeviceType int

const (
	// DeviceAll matches every device. It is the zero value.
	DeviceAll DeviceType = iota
	DeviceChar
	DeviceBlock
)

// Char returns the character the kernel uses for t.
func (t DeviceType) Char() byte {
	switch t {
	case DeviceChar:
		return 'c'
	case DeviceBlock:
		return 'b'
	default:
		return 'a'
	}
}

func (t DeviceType) String() string {
	switch t {
	case DeviceChar:
		return "char"
	case DeviceBlock:
		return "block"
	default:
		return "all"
	}
}

// DeviceTypeFromChar maps a kernel device type character back to a DeviceType.
func DeviceTypeFromChar(c byte) (DeviceType, bool) {
	switch c {
	case 'a':
		return DeviceAll, true
	case 'c':
		return DeviceChar, true
	case 'b':
		return DeviceBlock, true
	}
	return DeviceAll, false
}

// ParseDeviceType parses a single kernel character or a type name (all, char, block).
func ParseDeviceType(s string) (DeviceType, error) {
	switch s {
	case "all":
		return DeviceAll, nil
	case "char":
		return DeviceChar, nil
	case "block":
		return DeviceBlock, nil
	}
	if len(s) == 1 {
		if t, ok := DeviceTypeFromChar(s[0]); ok {
			return t, nil
		}
	}
	return DeviceAll, parseErrorf("invalid device type %q", s)
}

func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DeviceType) UnmarshalText(b []byte) error {
	v, err := ParseDeviceType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t *DeviceType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

// DevicePermission is one access bit of a device rule.
type DevicePermission int

const (
	PermRead DevicePermission = iota
	PermWrite
	// PermMkNod allows mknod(2) with the rule's major and minor numbers.
	PermMkNod
)

// Char returns the character the kernel uses for p.
func (p DevicePermission) Char() byte {
	switch p {
	case PermWrite:
		return 'w'
	case PermMkNod:
		return 'm'
	default:
		return 'r'
	}
}

func (p DevicePermission) String() string {
	return string(p.Char())
}

// DevicePermissionFromChar maps r, w or m to a DevicePermission.
func DevicePermissionFromChar(c byte) (DevicePermission, bool) {
	switch c {
	case 'r':
		return PermRead, true
	case 'w':
		return PermWrite, true
	case 'm':
		return PermMkNod, true
	}
	return PermRead, false
}

// DevicePermissions is an ordered permission set. It renders in the order it holds.
type DevicePermissions []DevicePermission

// AllPermissions returns read, write and mknod.
func AllPermissions() DevicePermissions {
	return DevicePermissions{PermRead, PermWrite, PermMkNod}
}

func (ps DevicePermissions) String() string {
	var b strings.Builder
	for _, p := range ps {
		b.WriteByte(p.Char())
	}
	return b.String()
}

// IsValidPermissions reports whether s is a non-empty string of r, w and m.
func IsValidPermissions(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := DevicePermissionFromChar(s[i]); !ok {
			return false
		}
	}
	return true
}

// ParseDevicePermissions decodes a kernel permission string. An empty string is an empty set.
func ParseDevicePermissions(s string) (DevicePermissions, error) {
	ps := make(DevicePermissions, 0, len(s))
	for i := 0; i < len(s); i++ {
		p, ok := DevicePermissionFromChar(s[i])
		if !ok {
			return nil, parseErrorf("invalid device permission %q in %q", s[i], s)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func (ps DevicePermissions) MarshalText() ([]byte, error) {
	return []byte(ps.String()), nil
}

func (ps *DevicePermissions) UnmarshalText(b []byte) error {
	v, err := ParseDevicePermissions(string(b))
	if err != nil {
		return err
	}
	*ps = v
	return nil
}

func (ps *DevicePermissions) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return ps.UnmarshalText([]byte(s))
}
