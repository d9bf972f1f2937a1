// Package signeddata implements the "tbs||signatureAlgorithm||signature"
// verification pattern shared by X.509 certificates and CRLs, and the
// algorithm-identifier dispatch RFC 5280 requires between the two. It never
// inspects key material itself; all cryptography is delegated to an
// injected Algorithm.
package signeddata

import (
	"bytes"

	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/wpkierror"
)

// SignedData is the borrowed triple (data, algorithm, signature) that
// appears in both Certificate and CertificateList.
type SignedData struct {
	Data      []byte // tbsCertificate or tbsCertList, full TLV
	Algorithm []byte // signatureAlgorithm AlgorithmIdentifier, content only (no outer SEQUENCE tag/length)
	Signature []byte // signatureValue BIT STRING contents, unused-bits already stripped
}

// Algorithm is an abstract signature verification algorithm: a pair of
// AlgorithmIdentifier encodings plus a verification callback. Exactly one
// Algorithm value is needed per (public key type, signature scheme) pair;
// implementations live in package algo and are supplied by the caller so
// the core never hard-codes a cryptographic primitive.
type Algorithm interface {
	// PublicKeyAlgID is the AlgorithmIdentifier that must appear in a
	// SubjectPublicKeyInfo for this Algorithm to apply.
	PublicKeyAlgID() []byte
	// SignatureAlgID is the AlgorithmIdentifier that must appear as the
	// signatureAlgorithm of the data being verified.
	SignatureAlgID() []byte
	// VerifySignature reports whether signature is a valid signature by
	// publicKey (the subjectPublicKey BIT STRING contents, unparsed) over
	// message. Implementations must hash message themselves if their
	// algorithm requires it.
	VerifySignature(publicKey, message, signature []byte) error
}

type spki struct {
	algorithmIDValue []byte
	keyValue         []byte
}

func parseSPKI(raw []byte) (spki, error) {
	r := der.NewReader(raw)
	var s spki
	algID, err := r.ExpectTagAndGetValue(der.Sequence)
	if err != nil {
		return spki{}, wpkierror.BadDER
	}
	key, err := der.BitStringNoUnusedBits(r)
	if err != nil {
		return spki{}, wpkierror.BadDER
	}
	if !r.AtEnd() {
		return spki{}, wpkierror.TrailingData
	}
	s.algorithmIDValue = algID
	s.keyValue = key
	return s, nil
}

// VerifySignedData verifies signed using the public key encoded in spkiRaw
// (a full SubjectPublicKeyInfo TLV), trying each of supported in order:
//
//  1. Filter supported to those whose SignatureAlgID byte-exactly equals
//     signed.Algorithm.
//  2. For each match, parse spkiRaw and require PublicKeyAlgID to
//     byte-exactly equal the SPKI's algorithm identifier; otherwise skip.
//  3. Call VerifySignature; its result (success or
//     InvalidSignatureForPublicKey) is returned immediately.
//
// If every signature-alg match is skipped at step 2, the result is
// UnsupportedSignatureAlgorithmForPublicKey; if no algorithm matched
// signed.Algorithm at all, it is UnsupportedSignatureAlgorithm.
func VerifySignedData(supported []Algorithm, spkiRaw []byte, signed SignedData) error {
	foundSignatureAlgMatch := false
	for _, alg := range supported {
		if !bytes.Equal(alg.SignatureAlgID(), signed.Algorithm) {
			continue
		}
		err := verifyOne(alg, spkiRaw, signed)
		if err == wpkierror.UnsupportedSignatureAlgorithmForPublicKey {
			foundSignatureAlgMatch = true
			continue
		}
		return err
	}
	if foundSignatureAlgMatch {
		return wpkierror.UnsupportedSignatureAlgorithmForPublicKey
	}
	return wpkierror.UnsupportedSignatureAlgorithm
}

func verifyOne(alg Algorithm, spkiRaw []byte, signed SignedData) error {
	spki, err := parseSPKI(spkiRaw)
	if err != nil {
		return err
	}
	if !bytes.Equal(alg.PublicKeyAlgID(), spki.algorithmIDValue) {
		return wpkierror.UnsupportedSignatureAlgorithmForPublicKey
	}
	if err := alg.VerifySignature(spki.keyValue, signed.Data, signed.Signature); err != nil {
		return wpkierror.InvalidSignatureForPublicKey
	}
	return nil
}
