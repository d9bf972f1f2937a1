package name

import (
	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/wpkierror"
)

// SubjectName is the identity a caller wants a certificate validated for:
// exactly one of DNS or IP is set.
type SubjectName struct {
	DNS DNSID
	IP  IPAddress
	isIP bool
}

// NewDNSSubjectName wraps a DNS reference identifier as a SubjectName.
func NewDNSSubjectName(d DNSID) SubjectName { return SubjectName{DNS: d} }

// NewIPSubjectName wraps an IP reference identifier as a SubjectName.
func NewIPSubjectName(ip IPAddress) SubjectName { return SubjectName{IP: ip, isIP: true} }

// MatchesCert reports whether an end-entity certificate's identity fields
// include subject: a DNS subject is matched only against subjectAltName
// DNSName entries (the subject DN's commonName is never consulted); an IP
// subject is likewise matched only against subjectAltName IPAddress
// entries, never the subject field.
func (subject SubjectName) MatchesCert(subjectDN, sanValue []byte) (bool, error) {
	matched := false
	var iterErr error

	if subject.isIP {
		iterErr = EachName(nil, sanValue, func(gn GeneralName) (bool, error) {
			if gn.Tag != TagIPAddress {
				return false, nil
			}
			if ipPresentedMatchesReference(gn.Value, subject.IP) {
				matched = true
				return true, nil
			}
			return false, nil
		})
	} else {
		iterErr = EachName(subjectDN, sanValue, func(gn GeneralName) (bool, error) {
			if gn.Tag != TagDNSName {
				return false, nil
			}
			if dnsPresentedMatchesReference(gn.Value, subject.DNS) {
				matched = true
				return true, nil
			}
			return false, nil
		})
	}
	if iterErr != nil {
		return false, iterErr
	}
	return matched, nil
}

// Subtrees is a decoded pair of NameConstraints subtree lists: the raw
// content bytes of permittedSubtrees and excludedSubtrees, or nil if the
// corresponding field was absent from the extension.
type Subtrees struct {
	Permitted []byte
	Excluded  []byte
}

// ParseNameConstraints decodes a NameConstraints extension value (RFC 5280
// §4.2.1.10) into its two GeneralSubtrees lists, without interpreting their
// contents; CheckPresentedName does that per presented name.
func ParseNameConstraints(extValue []byte) (Subtrees, error) {
	// NameConstraints ::= SEQUENCE { permittedSubtrees [0] OPTIONAL,
	// excludedSubtrees [1] OPTIONAL }; both fields live inside the SEQUENCE.
	outer := der.NewReader(extValue)
	body, err := outer.ExpectTagAndGetValue(der.Sequence)
	if err != nil || !outer.AtEnd() {
		return Subtrees{}, wpkierror.BadDER
	}
	r := der.NewReader(body)
	var s Subtrees
	if v, ok, err := der.ReadOptionalTag(r, der.ContextSpecificConstructed0); err != nil {
		return s, wpkierror.BadDER
	} else if ok {
		s.Permitted = v
	}
	if v, ok, err := der.ReadOptionalTag(r, der.ContextSpecificConstructed1); err != nil {
		return s, wpkierror.BadDER
	} else if ok {
		s.Excluded = v
	}
	if !r.AtEnd() {
		return s, wpkierror.BadDER
	}
	return s, nil
}

// CheckPresentedName implements check_presented_id_conforms_to_constraints:
// it walks each GeneralSubtree entry of permitted then excluded (skipping a
// nil list) and decides whether name satisfies the combined constraint. It
// returns NameConstraintViolation on the first violation; a nil result
// means name conforms (or no constraint of its form was present).
func CheckPresentedName(subtrees Subtrees, target GeneralName) error {
	lists := []struct {
		raw        []byte
		isExcluded bool
	}{
		{subtrees.Permitted, false},
		{subtrees.Excluded, true},
	}

	for _, list := range lists {
		if list.raw == nil {
			continue
		}
		r := der.NewReader(list.raw)
		hasPermittedMatch := false
		hasPermittedMismatch := false
		for !r.AtEnd() {
			base, err := readSubtreeBase(r)
			if err != nil {
				return err
			}
			matched, applicable, err := matchOne(target, base, list.isExcluded)
			if err != nil {
				return err
			}
			if !applicable {
				continue
			}
			if !list.isExcluded {
				if matched {
					hasPermittedMatch = true
				} else {
					hasPermittedMismatch = true
				}
			} else if matched {
				return wpkierror.NameConstraintViolation
			}
		}
		if !list.isExcluded && hasPermittedMismatch && !hasPermittedMatch {
			return wpkierror.NameConstraintViolation
		}
	}
	return nil
}

func readSubtreeBase(r *der.Reader) (GeneralName, error) {
	// GeneralSubtree ::= SEQUENCE { base GeneralName, minimum [0] ... DEFAULT 0,
	// maximum [1] ... OPTIONAL }. Per RFC 5280's Web PKI profile neither
	// minimum nor maximum may be encoded, so a single GeneralName is the
	// whole content.
	var base GeneralName
	err := der.Nested(r, der.Sequence, func(e *der.Reader) error {
		b, err := readGeneralName(e)
		if err != nil {
			return err
		}
		base = b
		return nil
	})
	return base, err
}

// matchOne compares target against one constraint base. applicable is
// false when the two names are of different forms: treated as "move on to
// the next constraint entry", not a match or mismatch.
func matchOne(target, base GeneralName, isExcluded bool) (matched bool, applicable bool, err error) {
	if target.Tag != base.Tag {
		return false, false, nil
	}
	switch target.Tag {
	case TagDNSName:
		return dnsPresentedMatchesConstraint(target.Value, base.Value), true, nil
	case TagIPAddress:
		matched, err := ipPresentedMatchesConstraint(target.Value, base.Value)
		if err != nil {
			return false, true, err
		}
		return matched, true, nil
	case TagDirectoryName:
		// Directory name constraints are not implemented. Per RFC 5280, a
		// constraint on a name form the validator does not process must
		// still be enforced rather than silently ignored, so a DirectoryName
		// never satisfies a permittedSubtrees entry and always satisfies an
		// excludedSubtrees entry.
		return isExcluded, true, nil
	default:
		// Same unsupported tag on both sides: reject rather than ignore.
		return false, false, wpkierror.NameConstraintViolation
	}
}
