package herd

import "fmt"

// SystemType identifies the herd-management software that produced the
// herd-master export. It selects which column names the field resolver
// tries first.
type SystemType string

const (
	SystemAfimilk SystemType = "afimilk" // Afimilk / AfiFarm exports
	SystemYimuyun SystemType = "yimuyun" // Yimuyun cloud herd management
	SystemDHI     SystemType = "dhi"     // national DHI lab reports
	SystemOther   SystemType = "other"   // anything else, fuzzy matching only
)

// SystemTypes lists every supported system type.
func SystemTypes() []SystemType {
	return []SystemType{SystemAfimilk, SystemYimuyun, SystemDHI, SystemOther}
}

// ParseSystemType validates a system type string from configuration.
func ParseSystemType(s string) (SystemType, error) {
	switch SystemType(s) {
	case SystemAfimilk, SystemYimuyun, SystemDHI, SystemOther:
		return SystemType(s), nil
	}
	return "", fmt.Errorf("unknown system type %q, must be one of %v", s, SystemTypes())
}
