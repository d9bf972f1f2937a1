package name

import (
	"net"

	"github.com/japaric/webpki/wpkierror"
)

// IPAddress is a validated reference identifier holding exactly 4 (IPv4) or
// 16 (IPv6) octets in network byte order.
type IPAddress struct {
	octets []byte
}

// Bytes returns the raw address octets.
func (ip IPAddress) Bytes() []byte { return ip.octets }

// NewIPAddress validates and parses s as a textual IPv4 or IPv6 literal,
// rejecting leading zeros and other ambiguous notations. It delegates to
// net.ParseIP, then re-renders the result and requires the render to
// round-trip to the original input; net.ParseIP itself already rejects
// leading zeros and zone IDs for the bracket-free literal syntax this
// engine accepts, and the round-trip check catches the handful of
// alternate-but-equivalent textual forms (e.g. embedded IPv4-in-IPv6) that
// a byte-exact Cert SAN entry was never encoded from.
func NewIPAddress(s string) (IPAddress, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return IPAddress{}, wpkierror.ExtensionValueInvalid
	}
	if v4 := ip.To4(); v4 != nil && ip.String() == s {
		return IPAddress{octets: v4}, nil
	}
	if v6 := ip.To16(); v6 != nil && ip.String() == s {
		return IPAddress{octets: v6}, nil
	}
	return IPAddress{}, wpkierror.ExtensionValueInvalid
}

// ipPresentedMatchesReference implements the IP presented-ID vs
// reference-ID rule: exact byte equality on 4 or 16 octets.
func ipPresentedMatchesReference(presented []byte, reference IPAddress) bool {
	if len(presented) != len(reference.octets) {
		return false
	}
	for i := range presented {
		if presented[i] != reference.octets[i] {
			return false
		}
	}
	return true
}

// ipPresentedMatchesConstraint implements the IP name-constraint rule:
// constraint is an address||mask pair (8 octets for IPv4, 32 for IPv6), and
// presented matches iff (presented & mask) == (address & mask). The mask
// must be a contiguous run of 1 bits followed by a contiguous run of 0
// bits; a non-contiguous mask makes the constraint unsatisfiable rather
// than a match decided by its literal bits, so it is reported as an error
// instead of silently returning false.
func ipPresentedMatchesConstraint(presented, constraint []byte) (bool, error) {
	half := len(constraint) / 2
	if half == 0 || len(constraint)%2 != 0 {
		return false, nil
	}
	if len(presented) != half {
		return false, nil
	}
	address, mask := constraint[:half], constraint[half:]
	if !isContiguousMask(mask) {
		return false, wpkierror.NameConstraintViolation
	}
	for i := range presented {
		if presented[i]&mask[i] != address[i]&mask[i] {
			return false, nil
		}
	}
	return true, nil
}

// isContiguousMask reports whether mask is a valid netmask: some number of
// leading 0xFF bytes, then at most one partial byte, then all-zero bytes.
func isContiguousMask(mask []byte) bool {
	i := 0
	for ; i < len(mask) && mask[i] == 0xFF; i++ {
	}
	if i < len(mask) {
		switch mask[i] {
		case 0x00, 0x80, 0xC0, 0xE0, 0xF0, 0xF8, 0xFC, 0xFE:
			i++
		default:
			return false
		}
	}
	for ; i < len(mask); i++ {
		if mask[i] != 0x00 {
			return false
		}
	}
	return true
}
