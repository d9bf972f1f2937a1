// Package cert decodes an X.509 Certificate into a set of borrowed byte
// slices, doing no more interpretation than the validator needs: it walks
// the DER structure positionally, captures each field's raw bytes, and
// defers every semantic judgement (is this extension understood, is the
// validity window satisfied, ...) to package chain.
package cert

import (
	"time"

	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/signeddata"
	"github.com/japaric/webpki/wpkierror"
)

// MaxCertificateSize bounds the outermost Certificate SEQUENCE.
const MaxCertificateSize = 64 * 1024

// wrapDER translates a raw der-package parse failure into the flat
// wpkierror taxonomy. Anything already expressed as a wpkierror.Error
// (InvalidSerialNumber, BadDERTime, ...) passes through unchanged.
func wrapDER(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(wpkierror.Error); ok {
		return err
	}
	return wpkierror.BadDER
}

// Extension is one entry of a certificate's extensions SEQUENCE, kept for
// display (cmd/webpkictl inspect) and for the unknown-critical-extension
// check in package chain.
type Extension struct {
	OID      []byte // DER content bytes of the OBJECT IDENTIFIER
	Critical bool
	Value    []byte // raw extnValue OCTET STRING contents
}

// Cert is a borrowed view of one parsed certificate. Every slice field
// aliases the byte slice originally passed to Parse; the caller must keep
// that buffer alive for as long as the Cert (or anything derived from it,
// such as a chain.Candidate) is in use.
type Cert struct {
	Raw    []byte // the full Certificate DER encoding, as given to Parse
	TBSRaw []byte // the full tbsCertificate TLV, the bytes the signature covers

	SignedData signeddata.SignedData

	Version int // 1, 2 or 3

	SerialNumber []byte // raw INTEGER content bytes, compared byte-exact

	IssuerRaw  []byte // full Name TLV
	SubjectRaw []byte // full Name TLV

	NotBefore int64 // UNIX seconds
	NotAfter  int64

	SPKIRaw []byte // full SubjectPublicKeyInfo TLV

	// Optional extension payloads. Each, if non-nil, is the raw extnValue
	// OCTET STRING contents — not the wrapping SEQUENCE. nil means absent.
	SubjectAltName        []byte
	NameConstraints       []byte
	ExtKeyUsage           []byte
	BasicConstraints      []byte
	KeyUsage              []byte
	AuthorityKeyID        []byte
	SubjectKeyID          []byte
	CRLDistributionPoints []byte

	Extensions []Extension
}

// Parse decodes der as a single X.509 Certificate. It does not validate any
// semantic property (expiry, signature, extension criticality rules); it
// only enforces the DER encoding rules and the structural invariants spec
// §4.2 requires of the parser itself.
func Parse(input []byte) (*Cert, error) {
	r := der.NewReader(input)
	var c *Cert
	full, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		return struct{}{}, der.Nested(rr, der.Sequence, func(body *der.Reader) error {
			tbsRaw, tbs, err := der.ReadPartial(body, parseTBSCertificate)
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
			tbs.TBSRaw = tbsRaw
			tbs.SignedData = signeddata.SignedData{
				Data:      tbsRaw,
				Algorithm: sigAlgRaw,
				Signature: sig,
			}
			c = tbs
			return nil
		})
	})
	if err != nil {
		return nil, wrapDER(err)
	}
	if !r.AtEnd() {
		return nil, wpkierror.TrailingData
	}
	if len(full) > MaxCertificateSize {
		return nil, wpkierror.BadDER
	}
	c.Raw = full
	return c, nil
}

func parseTBSCertificate(r *der.Reader) (*Cert, error) {
	c := &Cert{Version: 1}

	if r.Peek(der.ContextSpecificConstructed0) {
		verRaw, err := r.ExpectTagAndGetValue(der.ContextSpecificConstructed0)
		if err != nil {
			return nil, err
		}
		vr := der.NewReader(verRaw)
		v, err := der.PositiveInteger(vr)
		if err != nil {
			return nil, err
		}
		if !vr.AtEnd() {
			return nil, wpkierror.BadDER
		}
		c.Version = int(bigEndianToInt(v)) + 1
	}

	serial, err := der.Integer(r)
	if err != nil {
		return nil, wpkierror.InvalidSerialNumber
	}
	c.SerialNumber = serial

	// signature AlgorithmIdentifier — present but unused here; the
	// authoritative algorithm identifier for verification purposes is the
	// outer Certificate.signatureAlgorithm, matched byte-exact against it.
	if _, err := r.ExpectTagAndGetValue(der.Sequence); err != nil {
		return nil, err
	}

	issuerRaw, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		_, err := rr.ExpectTagAndGetValue(der.Sequence)
		return struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	c.IssuerRaw = issuerRaw

	if err := der.Nested(r, der.Sequence, func(v *der.Reader) error {
		nb, err := parseTime(v)
		if err != nil {
			return err
		}
		na, err := parseTime(v)
		if err != nil {
			return err
		}
		c.NotBefore, c.NotAfter = nb, na
		return nil
	}); err != nil {
		return nil, err
	}
	if c.NotAfter < c.NotBefore {
		return nil, wpkierror.InvalidCertValidity
	}

	subjectRaw, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		_, err := rr.ExpectTagAndGetValue(der.Sequence)
		return struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	c.SubjectRaw = subjectRaw

	spkiRaw, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		_, err := rr.ExpectTagAndGetValue(der.Sequence)
		return struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	c.SPKIRaw = spkiRaw

	// issuerUniqueID [1], subjectUniqueID [2]: recognized and skipped, never
	// consulted by anything in this engine.
	if _, _, err := der.ReadOptionalTag(r, der.Tag(der.ContextSpecific|1)); err != nil {
		return nil, err
	}
	if _, _, err := der.ReadOptionalTag(r, der.Tag(der.ContextSpecific|2)); err != nil {
		return nil, err
	}

	extPresent := r.Peek(der.ContextSpecificConstructed3)
	if extPresent {
		if c.Version != 3 {
			return nil, wpkierror.UnsupportedCertVersion
		}
		extRaw, err := r.ExpectTagAndGetValue(der.ContextSpecificConstructed3)
		if err != nil {
			return nil, err
		}
		if err := parseExtensions(c, extRaw); err != nil {
			return nil, err
		}
	}

	if !r.AtEnd() {
		return nil, wpkierror.TrailingData
	}
	return c, nil
}

func parseExtensions(c *Cert, raw []byte) error {
	outer := der.NewReader(raw)
	return der.Nested(outer, der.Sequence, func(seq *der.Reader) error {
		seen := make(map[string]bool)
		for !seq.AtEnd() {
			var ext Extension
			if err := der.Nested(seq, der.Sequence, func(e *der.Reader) error {
				oid, err := e.ExpectTagAndGetValue(der.OIDTag)
				if err != nil {
					return err
				}
				ext.OID = oid
				crit, err := der.BooleanWithDefault(e, false)
				if err != nil {
					return err
				}
				ext.Critical = crit
				val, err := e.ExpectTagAndGetValue(der.OctetStringTag)
				if err != nil {
					return err
				}
				ext.Value = val
				return nil
			}); err != nil {
				return err
			}

			key := string(ext.OID)
			if seen[key] {
				return wpkierror.MissingOrMalformedExtensions
			}
			seen[key] = true

			switch {
			case oidEqual(ext.OID, oidSubjectAltName):
				c.SubjectAltName = ext.Value
			case oidEqual(ext.OID, oidNameConstraints):
				c.NameConstraints = ext.Value
			case oidEqual(ext.OID, oidExtKeyUsage):
				c.ExtKeyUsage = ext.Value
			case oidEqual(ext.OID, oidBasicConstraints):
				c.BasicConstraints = ext.Value
			case oidEqual(ext.OID, oidKeyUsage):
				c.KeyUsage = ext.Value
			case oidEqual(ext.OID, oidAuthorityKeyIdentifier):
				c.AuthorityKeyID = ext.Value
			case oidEqual(ext.OID, oidSubjectKeyIdentifier):
				c.SubjectKeyID = ext.Value
			case oidEqual(ext.OID, oidCRLDistributionPoints):
				c.CRLDistributionPoints = ext.Value
			}

			c.Extensions = append(c.Extensions, ext)
		}
		return nil
	})
}

// UnrecognizedCritical reports the OID of the first critical extension this
// parser does not interpret, or (nil, false) if every critical extension is
// recognized. Called by package chain during the self-consistency check.
func (c *Cert) UnrecognizedCritical() ([]byte, bool) {
	for _, ext := range c.Extensions {
		if ext.Critical && !isRecognized(ext.OID) {
			return ext.OID, true
		}
	}
	return nil, false
}

func bigEndianToInt(v []byte) int64 {
	var n int64
	for _, b := range v {
		n = n<<8 | int64(b)
	}
	return n
}

func parseTime(r *der.Reader) (int64, error) {
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
