package name

import (
	"strings"

	"golang.org/x/net/idna"

	"github.com/japaric/webpki/wpkierror"
)

// DNSID is a validated, normalized DNS reference identifier: the name a
// caller wants to authenticate a peer as. Construct one with NewDNSID.
type DNSID struct {
	ascii string // lowercase, no trailing dot, idna-normalized to A-labels
}

// String returns the normalized ASCII form.
func (d DNSID) String() string { return d.ascii }

// NewDNSID validates and normalizes s as a DNS reference identifier per
// RFC 6125: ASCII after IDNA conversion, lowercased, no trailing dot, at
// least one dot, each label 1..63 octets, total length at most 253 octets,
// labels drawn from [A-Za-z0-9-] with no leading or trailing hyphen. A
// Unicode label is converted to its A-label (xn--) form via IDNA before
// validation, so callers may pass either form.
func NewDNSID(s string) (DNSID, error) {
	ascii, err := idna.Lookup.ToASCII(s)
	if err != nil {
		return DNSID{}, wpkierror.ExtensionValueInvalid
	}
	ascii = strings.ToLower(ascii)
	if err := validateReferenceID(ascii); err != nil {
		return DNSID{}, err
	}
	return DNSID{ascii: ascii}, nil
}

func validateReferenceID(s string) error {
	if s == "" || len(s) > 253 {
		return wpkierror.ExtensionValueInvalid
	}
	if strings.HasSuffix(s, ".") {
		return wpkierror.ExtensionValueInvalid
	}
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return wpkierror.ExtensionValueInvalid
	}
	for _, l := range labels {
		if !validLabel(l, false) {
			return wpkierror.ExtensionValueInvalid
		}
	}
	return nil
}

// validLabel reports whether l is a syntactically valid DNS label:
// 1..63 octets of [A-Za-z0-9-], no leading or trailing hyphen. If
// allowWildcard is true, a single leftmost label of exactly "*" is also
// accepted by the caller before this function is reached; validLabel itself
// never special-cases "*".
func validLabel(l string, allowWildcard bool) bool {
	_ = allowWildcard
	if len(l) == 0 || len(l) > 63 {
		return false
	}
	if l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for i := 0; i < len(l); i++ {
		c := l[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

// presentedIDSyntaxOK reports whether presented is a syntactically valid
// DNS presented identifier: the same grammar as a reference ID, except its
// leftmost label may be exactly "*" (a wildcard, matching exactly one
// label). It does not require a second dot, since a presented ID with no
// reference-ID structure simply never matches anything.
func presentedIDSyntaxOK(presented string) bool {
	if presented == "" || len(presented) > 253 {
		return false
	}
	if strings.HasSuffix(presented, ".") {
		return false
	}
	labels := strings.Split(presented, ".")
	for i, l := range labels {
		if i == 0 && l == "*" {
			continue
		}
		if !validLabel(l, false) {
			return false
		}
	}
	return true
}

// dnsPresentedMatchesReference implements the DNS presented-ID vs
// reference-ID rule: wildcards match exactly one leftmost label, IDN
// A-labels compare case-insensitively on ASCII bytes (both sides have
// already been lowercased by NewDNSID / this function), and any presented
// ID that fails the shared syntax check never matches (it is simply
// skipped, not a hard parse error, treating a malformed presented
// identifier as a non-match rather than an error).
func dnsPresentedMatchesReference(presented []byte, reference DNSID) bool {
	p := strings.ToLower(string(presented))
	if !presentedIDSyntaxOK(p) {
		return false
	}
	r := reference.ascii

	if strings.HasPrefix(p, "*.") {
		rest := p[2:]
		dotIdx := strings.IndexByte(r, '.')
		if dotIdx < 0 {
			return false
		}
		return rest == r[dotIdx+1:]
	}
	return p == r
}

// dnsPresentedMatchesConstraint implements the DNS presented-ID vs
// name-constraint rule: the constraint is a domain suffix (not a full
// reference ID, so it is not required to contain a dot or forbid a
// wildcard — it is never itself a presented identifier). An empty
// constraint matches every DNS name, per RFC 5280's convention for an
// all-domains constraint.
func dnsPresentedMatchesConstraint(presented, constraint []byte) bool {
	p := strings.ToLower(string(presented))
	c := strings.ToLower(string(constraint))
	if c == "" {
		return true
	}
	if p == c {
		return true
	}
	return strings.HasSuffix(p, "."+c)
}
