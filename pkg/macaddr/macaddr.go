// Package macaddr validates and encodes 48-bit hardware addresses.
package macaddr

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/projectdiscovery/netsurvey/pkg/types"
)

// Len is the byte length of a hardware address.
const Len = 6

var validPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[.:-]){5}([0-9A-Fa-f]{2})$`)

// IsValid reports whether s is six hex octets separated by ':', '-' or '.'.
func IsValid(s string) bool {
	return validPattern.MatchString(s)
}

// ToBytes converts a colon or hyphen separated address to its 6 bytes.
func ToBytes(s string) ([]byte, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == '-'
	})
	if len(parts) != Len {
		return nil, types.InvalidArgument("mac", "%q does not have %d octets", s, Len)
	}

	out := make([]byte, 0, Len)
	for _, part := range parts {
		if len(part) != 2 {
			return nil, types.InvalidArgument("mac", "%q has a malformed octet %q", s, part)
		}
		b, err := hex.DecodeString(part)
		if err != nil {
			return nil, types.InvalidArgument("mac", "%q has a non-hex octet %q", s, part)
		}
		out = append(out, b[0])
	}
	return out, nil
}

// Normalize pads short octets (as printed by BSD arp), lower-cases and joins
// with ':'. It returns false for anything that is not a usable unicast address.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "-", ":"))
	parts := strings.Split(s, ":")
	if len(parts) != Len {
		return "", false
	}
	for i, part := range parts {
		switch len(part) {
		case 1:
			parts[i] = "0" + part
		case 2:
		default:
			return "", false
		}
	}
	normalized := strings.ToLower(strings.Join(parts, ":"))
	if !IsValid(normalized) || IsZero(normalized) || normalized == "ff:ff:ff:ff:ff:ff" {
		return "", false
	}
	return normalized, true
}

// IsZero reports whether s is the all-zero placeholder used for incomplete entries.
func IsZero(s string) bool {
	return strings.Trim(s, "0:-.") == ""
}
