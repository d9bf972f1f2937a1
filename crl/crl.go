// Package crl decodes an X.509 CertificateList (RFC 5280 §5) into a
// borrowed view, and provides the scope and revocation-lookup checks
// package chain consults during path validation. Like package cert, it
// captures byte slices of the caller's buffer rather than copying.
package crl

import (
	"bytes"
	"time"

	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/signeddata"
	"github.com/japaric/webpki/wpkierror"
)

var (
	oidCRLNumber           = []byte{0x55, 0x1D, 0x14}
	oidDeltaCRLIndicator   = []byte{0x55, 0x1D, 0x1B}
	oidIssuingDistribution = []byte{0x55, 0x1D, 0x1C}
	oidAuthorityKeyID      = []byte{0x55, 0x1D, 0x23}

	oidReasonCode        = []byte{0x55, 0x1D, 0x15}
	oidInvalidityDate    = []byte{0x55, 0x1D, 0x18}
	oidCertificateIssuer = []byte{0x55, 0x1D, 0x1D}
)

var recognizedCRLCritical = [][]byte{
	oidCRLNumber,
	oidIssuingDistribution,
	oidAuthorityKeyID,
}

var recognizedEntryCritical = [][]byte{
	oidReasonCode,
	oidInvalidityDate,
	oidCertificateIssuer,
}

func oidIn(oid []byte, set [][]byte) bool {
	for _, o := range set {
		if bytes.Equal(oid, o) {
			return true
		}
	}
	return false
}

// IssuingDistributionPoint is the subset of the IDP extension the scope
// check consults. distributionPoint itself is kept only for display;
// nothing in this engine matches against it.
type IssuingDistributionPoint struct {
	DistributionPoint     []byte // raw [0] content, nil if absent
	OnlyContainsUserCerts bool
	OnlyContainsCACerts   bool
	OnlySomeReasons       []byte // BIT STRING content, nil if absent
	IndirectCRL           bool
}

// RevokedCert is one entry of a CRL's revokedCertificates list.
type RevokedCert struct {
	RevocationDate int64
	Reason         int    // -1 if the reasonCode entry extension is absent
	InvalidityDate int64  // 0 if the invalidityDate entry extension is absent
	IssuerRaw      []byte // certificateIssuer entry extension value, for indirect CRLs; nil otherwise
}

// CertRevocationList is a borrowed view of one parsed CertificateList.
type CertRevocationList struct {
	Raw []byte

	SignedData signeddata.SignedData

	IssuerDN []byte // full Name TLV, same representation as cert.Cert.IssuerRaw

	ThisUpdate int64
	NextUpdate int64 // 0 if absent
	HasNext    bool

	AuthorityKeyID []byte // AKI extension value, nil if absent
	HasIDP         bool
	IDP            IssuingDistributionPoint

	revoked map[string]RevokedCert
}

// Lookup reports whether serial (the raw INTEGER content bytes of a
// certificate's serialNumber) appears in the revoked map, and if so, the
// RevokedCert entry describing it.
func (l *CertRevocationList) Lookup(serial []byte) (RevokedCert, bool) {
	rc, ok := l.revoked[string(serial)]
	return rc, ok
}

// InScope reports whether l covers a certificate issued by issuerDN with
// basic-constraints-derived "is a CA" status isCA: the CRL issuer must
// equal the cert issuer (direct CRL), or an IDP with
// indirectCRL set must be present; and if the IDP restricts to one kind of
// certificate, the target's role must match.
//
// A CRL whose IDP carries onlySomeReasons is never in scope. Such a CRL is
// only authoritative for the reason codes it enumerates, and an entry's
// absence from it says nothing about revocation for reasons outside that
// set; treating it as authoritative anyway would let a certificate revoked
// for an out-of-scope reason read back as not revoked.
func (l *CertRevocationList) InScope(issuerDN []byte, isCA bool) bool {
	direct := bytes.Equal(l.IssuerDN, issuerDN)
	if !direct {
		if !l.HasIDP || !l.IDP.IndirectCRL {
			return false
		}
	}
	if l.HasIDP {
		if l.IDP.OnlySomeReasons != nil {
			return false
		}
		if l.IDP.OnlyContainsUserCerts && isCA {
			return false
		}
		if l.IDP.OnlyContainsCACerts && !isCA {
			return false
		}
	}
	return true
}

// Parse decodes input as a single X.509 CertificateList.
func Parse(input []byte) (*CertRevocationList, error) {
	r := der.NewReader(input)
	var l *CertRevocationList
	full, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		return struct{}{}, der.Nested(rr, der.Sequence, func(body *der.Reader) error {
			tbsRaw, parsed, err := der.ReadPartial(body, parseTBSCertList)
			if err != nil {
				return err
			}
			sigAlgRaw, err := body.ExpectTagAndGetValue(der.Sequence)
			if err != nil {
				return err
			}
			sig, err := der.BitStringNoUnusedBits(body)
			if err != nil {
				return err
			}
			parsed.SignedData = signeddata.SignedData{
				Data:      tbsRaw,
				Algorithm: sigAlgRaw,
				Signature: sig,
			}
			l = parsed
			return nil
		})
	})
	if err != nil {
		if _, ok := err.(wpkierror.Error); ok {
			return nil, err
		}
		return nil, wpkierror.BadDER
	}
	if !r.AtEnd() {
		return nil, wpkierror.TrailingData
	}
	l.Raw = full
	return l, nil
}

func parseTBSCertList(r *der.Reader) (*CertRevocationList, error) {
	l := &CertRevocationList{revoked: make(map[string]RevokedCert)}

	if r.Peek(der.IntegerTag) {
		if _, err := der.PositiveInteger(r); err != nil {
			return nil, wpkierror.CRLUnsupportedCertVersion
		}
	}

	if _, err := r.ExpectTagAndGetValue(der.Sequence); err != nil { // signature AlgorithmIdentifier
		return nil, err
	}

	issuerRaw, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		_, err := rr.ExpectTagAndGetValue(der.Sequence)
		return struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	l.IssuerDN = issuerRaw

	thisUpdate, err := parseCRLTime(r)
	if err != nil {
		return nil, err
	}
	l.ThisUpdate = thisUpdate

	if r.Peek(der.UTCTimeTag) || r.Peek(der.GeneralizedTimeTag) {
		nextUpdate, err := parseCRLTime(r)
		if err != nil {
			return nil, err
		}
		l.NextUpdate = nextUpdate
		l.HasNext = true
	}

	if r.Peek(der.Sequence) {
		if err := der.Nested(r, der.Sequence, func(list *der.Reader) error {
			for !list.AtEnd() {
				rc, serial, err := parseRevokedCert(list)
				if err != nil {
					return err
				}
				l.revoked[string(serial)] = rc
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if r.Peek(der.ContextSpecificConstructed0) {
		extRaw, err := r.ExpectTagAndGetValue(der.ContextSpecificConstructed0)
		if err != nil {
			return nil, err
		}
		if err := parseCRLExtensions(l, extRaw); err != nil {
			return nil, err
		}
	}

	if !r.AtEnd() {
		return nil, wpkierror.TrailingData
	}
	return l, nil
}

func parseCRLTime(r *der.Reader) (int64, error) {
	tag, value, err := r.ReadTagAndGetValue()
	if err != nil {
		return 0, err
	}
	switch tag {
	case der.UTCTimeTag:
		return parseUTCTime(value)
	case der.GeneralizedTimeTag:
		return parseGeneralizedTime(value)
	default:
		return 0, wpkierror.BadDERTime
	}
}

func parseRevokedCert(r *der.Reader) (RevokedCert, []byte, error) {
	var rc RevokedCert
	rc.Reason = -1
	var serial []byte
	err := der.Nested(r, der.Sequence, func(e *der.Reader) error {
		s, err := der.Integer(e)
		if err != nil {
			return wpkierror.InvalidSerialNumber
		}
		serial = s

		date, err := parseCRLTime(e)
		if err != nil {
			return err
		}
		rc.RevocationDate = date

		if e.Peek(der.Sequence) {
			return der.Nested(e, der.Sequence, func(exts *der.Reader) error {
				for !exts.AtEnd() {
					if err := der.Nested(exts, der.Sequence, func(ext *der.Reader) error {
						oid, err := ext.ExpectTagAndGetValue(der.OIDTag)
						if err != nil {
							return err
						}
						critical, err := der.BooleanWithDefault(ext, false)
						if err != nil {
							return err
						}
						val, err := ext.ExpectTagAndGetValue(der.OctetStringTag)
						if err != nil {
							return err
						}
						switch {
						case bytes.Equal(oid, oidReasonCode):
							rc.Reason = parseReasonCode(val)
						case bytes.Equal(oid, oidInvalidityDate):
							t, err := parseCRLTime(der.NewReader(val))
							if err == nil {
								rc.InvalidityDate = t
							}
						case bytes.Equal(oid, oidCertificateIssuer):
							rc.IssuerRaw = val
						default:
							if critical && !oidIn(oid, recognizedEntryCritical) {
								return wpkierror.CRLUnsupportedCriticalExtension
							}
						}
						return nil
					}); err != nil {
						return err
					}
				}
				return nil
			})
		}
		return nil
	})
	return rc, serial, err
}

func parseReasonCode(val []byte) int {
	inner := der.NewReader(val)
	_, content, err := inner.ReadTagAndGetValue()
	if err != nil || len(content) != 1 {
		return -1
	}
	return int(content[0])
}

func parseCRLExtensions(l *CertRevocationList, raw []byte) error {
	outer := der.NewReader(raw)
	return der.Nested(outer, der.Sequence, func(seq *der.Reader) error {
		for !seq.AtEnd() {
			var oid, value []byte
			var critical bool
			if err := der.Nested(seq, der.Sequence, func(e *der.Reader) error {
				o, err := e.ExpectTagAndGetValue(der.OIDTag)
				if err != nil {
					return err
				}
				oid = o
				c, err := der.BooleanWithDefault(e, false)
				if err != nil {
					return err
				}
				critical = c
				v, err := e.ExpectTagAndGetValue(der.OctetStringTag)
				if err != nil {
					return err
				}
				value = v
				return nil
			}); err != nil {
				return err
			}

			switch {
			case bytes.Equal(oid, oidAuthorityKeyID):
				l.AuthorityKeyID = value
			case bytes.Equal(oid, oidIssuingDistribution):
				idp, err := parseIDP(value)
				if err != nil {
					return err
				}
				l.HasIDP = true
				l.IDP = idp
			case bytes.Equal(oid, oidDeltaCRLIndicator):
				return wpkierror.CRLUnsupportedDeltaCRL
			case bytes.Equal(oid, oidCRLNumber):
				// recognized, carries no decision-relevant content for this engine.
			default:
				if critical && !oidIn(oid, recognizedCRLCritical) {
					return wpkierror.CRLUnsupportedCriticalExtension
				}
			}
		}
		return nil
	})
}

func parseIDP(raw []byte) (IssuingDistributionPoint, error) {
	var idp IssuingDistributionPoint
	// IssuingDistributionPoint ::= SEQUENCE { ... }; every field is read
	// from inside that SEQUENCE.
	outer := der.NewReader(raw)
	body, err := outer.ExpectTagAndGetValue(der.Sequence)
	if err != nil {
		return idp, err
	}
	if !outer.AtEnd() {
		return idp, wpkierror.BadDER
	}
	r := der.NewReader(body)
	if v, ok, err := der.ReadOptionalTag(r, der.ContextSpecificConstructed0); err != nil {
		return idp, err
	} else if ok {
		idp.DistributionPoint = v
	}
	if v, ok, err := readContextBoolean(r, 1); err != nil {
		return idp, err
	} else if ok {
		idp.OnlyContainsUserCerts = v
	}
	if v, ok, err := readContextBoolean(r, 2); err != nil {
		return idp, err
	} else if ok {
		idp.OnlyContainsCACerts = v
	}
	if v, ok, err := der.ReadOptionalTag(r, der.Tag(der.ContextSpecific|3)); err != nil {
		return idp, err
	} else if ok {
		idp.OnlySomeReasons = v
	}
	if v, ok, err := readContextBoolean(r, 4); err != nil {
		return idp, err
	} else if ok {
		idp.IndirectCRL = v
	}
	if _, ok, err := der.ReadOptionalTag(r, der.Tag(der.ContextSpecific|5)); err != nil {
		return idp, err
	} else {
		_ = ok
	}
	return idp, nil
}

func readContextBoolean(r *der.Reader, n byte) (bool, bool, error) {
	tag := der.Tag(der.ContextSpecific | n)
	v, ok, err := der.ReadOptionalTag(r, tag)
	if err != nil || !ok {
		return false, ok, err
	}
	if len(v) != 1 {
		return false, true, wpkierror.BadDER
	}
	return v[0] != 0x00, true, nil
}

// parseUTCTime and parseGeneralizedTime duplicate cert's time parsing
// rather than exporting it: the two packages parse the same grammar for
// unrelated reasons (certificate validity vs. CRL thisUpdate/nextUpdate/
// entry dates) and neither should depend on the other's internals.
func parseUTCTime(v []byte) (int64, error) {
	s := string(v)
	if len(s) != 13 || s[12] != 'Z' {
		return 0, wpkierror.BadDERTime
	}
	yy, ok1 := atoiN(s[0:2])
	mm, ok2 := atoiN(s[2:4])
	dd, ok3 := atoiN(s[4:6])
	hh, ok4 := atoiN(s[6:8])
	mi, ok5 := atoiN(s[8:10])
	ss, ok6 := atoiN(s[10:12])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return 0, wpkierror.BadDERTime
	}
	year := yy
	if yy >= 50 {
		year += 1900
	} else {
		year += 2000
	}
	return makeTime(year, mm, dd, hh, mi, ss)
}

func parseGeneralizedTime(v []byte) (int64, error) {
	s := string(v)
	if len(s) != 15 || s[14] != 'Z' {
		return 0, wpkierror.BadDERTime
	}
	year, ok0 := atoiN(s[0:4])
	mm, ok1 := atoiN(s[4:6])
	dd, ok2 := atoiN(s[6:8])
	hh, ok3 := atoiN(s[8:10])
	mi, ok4 := atoiN(s[10:12])
	ss, ok5 := atoiN(s[12:14])
	if !(ok0 && ok1 && ok2 && ok3 && ok4 && ok5) {
		return 0, wpkierror.BadDERTime
	}
	return makeTime(year, mm, dd, hh, mi, ss)
}

func atoiN(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func makeTime(year, month, day, hour, min, sec int) (int64, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || min > 59 || sec > 60 {
		return 0, wpkierror.BadDERTime
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return t.Unix(), nil
}
