// Package trustanchor holds the borrowed trust anchor type the chain
// builder roots every path at. A trust anchor is a self-asserted identity:
// unlike an intermediate or end-entity Cert, it is never itself the subject
// of a parsed Certificate, so it carries only the three fields a path
// validator actually consults.
package trustanchor

import (
	"bytes"

	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/wpkierror"
)

// TrustAnchor is a borrowed (subject DN, SubjectPublicKeyInfo, optional
// nameConstraints) triple. Every field aliases the byte slice the caller
// supplied when building the anchor set; the caller must keep that buffer
// alive for as long as the TrustAnchor is used in a validation call.
type TrustAnchor struct {
	SubjectDN       []byte // full Name TLV, same representation as cert.Cert.SubjectRaw
	SPKI            []byte // full SubjectPublicKeyInfo TLV
	NameConstraints []byte // NameConstraints extension value, or nil if absent
}

// FromCertificate builds a TrustAnchor from the subject, SPKI and (if
// present) nameConstraints of an already-parsed self-signed certificate.
// This is the common case: most root stores are distributed as a set of
// self-signed X.509 certificates, and a caller should not need to unpack
// one by hand.
func FromCertificate(subjectDN, spki, nameConstraints []byte) TrustAnchor {
	return TrustAnchor{SubjectDN: subjectDN, SPKI: spki, NameConstraints: nameConstraints}
}

// ParseCertificate decodes raw as a full X.509 Certificate and returns a
// TrustAnchor built from its subject, SPKI and nameConstraints extension,
// ignoring every other field (validity, signature, key usage): a trust
// anchor's own certificate is never chain-built, so only its identity
// fields matter.
func ParseCertificate(raw []byte) (TrustAnchor, error) {
	r := der.NewReader(raw)
	var ta TrustAnchor
	err := der.Nested(r, der.Sequence, func(body *der.Reader) error {
		if err := der.Nested(body, der.Sequence, func(tbs *der.Reader) error {
			return parseAnchorTBS(tbs, &ta)
		}); err != nil {
			return err
		}
		// signatureAlgorithm and signatureValue are skipped over, not
		// interpreted or verified.
		if _, err := body.ExpectTagAndGetValue(der.Sequence); err != nil {
			return err
		}
		_, err := body.ExpectTagAndGetValue(der.BitStringTag)
		return err
	})
	if err != nil {
		if _, ok := err.(wpkierror.Error); ok {
			return TrustAnchor{}, err
		}
		return TrustAnchor{}, wpkierror.BadDER
	}
	return ta, nil
}

func parseAnchorTBS(r *der.Reader, ta *TrustAnchor) error {
	if r.Peek(der.ContextSpecificConstructed0) {
		if _, err := r.ExpectTagAndGetValue(der.ContextSpecificConstructed0); err != nil {
			return err
		}
	}
	if _, err := der.Integer(r); err != nil {
		return wpkierror.InvalidSerialNumber
	}
	if _, err := r.ExpectTagAndGetValue(der.Sequence); err != nil {
		return err
	}
	if _, err := r.ExpectTagAndGetValue(der.Sequence); err != nil { // issuer
		return err
	}
	if err := der.Nested(r, der.Sequence, func(v *der.Reader) error {
		// validity: skip both times without interpreting them.
		if _, _, err := v.ReadTagAndGetValue(); err != nil {
			return err
		}
		if _, _, err := v.ReadTagAndGetValue(); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	subjectRaw, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		_, err := rr.ExpectTagAndGetValue(der.Sequence)
		return struct{}{}, err
	})
	if err != nil {
		return err
	}
	ta.SubjectDN = subjectRaw

	spkiRaw, _, err := der.ReadPartial(r, func(rr *der.Reader) (struct{}, error) {
		_, err := rr.ExpectTagAndGetValue(der.Sequence)
		return struct{}{}, err
	})
	if err != nil {
		return err
	}
	ta.SPKI = spkiRaw

	if _, _, err := der.ReadOptionalTag(r, der.Tag(der.ContextSpecific|1)); err != nil {
		return err
	}
	if _, _, err := der.ReadOptionalTag(r, der.Tag(der.ContextSpecific|2)); err != nil {
		return err
	}

	if r.Peek(der.ContextSpecificConstructed3) {
		extRaw, err := r.ExpectTagAndGetValue(der.ContextSpecificConstructed3)
		if err != nil {
			return err
		}
		nc, err := findNameConstraints(extRaw)
		if err != nil {
			return err
		}
		ta.NameConstraints = nc
	}
	return nil
}

var oidNameConstraints = []byte{0x55, 0x1D, 0x1E}

func findNameConstraints(raw []byte) ([]byte, error) {
	outer := der.NewReader(raw)
	var found []byte
	err := der.Nested(outer, der.Sequence, func(seq *der.Reader) error {
		for !seq.AtEnd() {
			var oid, value []byte
			if err := der.Nested(seq, der.Sequence, func(e *der.Reader) error {
				o, err := e.ExpectTagAndGetValue(der.OIDTag)
				if err != nil {
					return err
				}
				oid = o
				if _, _, err := der.ReadOptionalTag(e, der.BooleanTag); err != nil {
					return err
				}
				v, err := e.ExpectTagAndGetValue(der.OctetStringTag)
				if err != nil {
					return err
				}
				value = v
				return nil
			}); err != nil {
				return err
			}
			if bytes.Equal(oid, oidNameConstraints) {
				found = value
			}
		}
		return nil
	})
	return found, err
}
