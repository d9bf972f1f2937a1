// Package webpki validates an X.509 certificate chain and the identity of
// its end-entity certificate, following the algorithm RFC 5280 and RFC 6125
// describe for a web PKI relying party. It wraps the lower packages (der,
// cert, signeddata, algo, trustanchor, crl, name, chain) behind the three
// calls a caller actually needs: parse an end-entity certificate, validate
// it against a trust anchor set for a given key usage, and check whether it
// is valid for a peer-supplied subject name.
package webpki

import (
	"github.com/japaric/webpki/algo"
	"github.com/japaric/webpki/cert"
	"github.com/japaric/webpki/chain"
	"github.com/japaric/webpki/crl"
	"github.com/japaric/webpki/name"
	"github.com/japaric/webpki/signeddata"
	"github.com/japaric/webpki/trustanchor"
	"github.com/japaric/webpki/wpkierror"
)

// Re-exported so callers never need to import the lower packages directly
// for the common path.
type (
	// TrustAnchor is a self-asserted (subject, public key, name constraints)
	// triple roots are validated against. Build one with
	// trustanchor.ParseCertificate or trustanchor.FromCertificate.
	TrustAnchor = trustanchor.TrustAnchor
	// KeyUsage selects the extended key usage (and, for the built-in
	// profiles, the keyUsage digitalSignature bit) an end-entity
	// certificate must carry. See chain.ServerAuth, chain.ClientAuth,
	// chain.CodeSigning and chain.Unrestricted.
	KeyUsage = chain.KeyUsage
	// Budget bounds the work a single validation may perform.
	Budget = chain.Budget
	// SubjectName is the peer identity a certificate is checked against.
	SubjectName = name.SubjectName
	// CertRevocationList is a parsed CRL, built with crl.Parse.
	CertRevocationList = crl.CertRevocationList
)

var (
	// ServerAuth is the profile a TLS client validating a server
	// certificate uses.
	ServerAuth = chain.ServerAuth
	// ClientAuth is the profile a TLS server validating a client
	// certificate uses.
	ClientAuth = chain.ClientAuth
	// CodeSigning requires id-kp-codeSigning and digitalSignature.
	CodeSigning = chain.CodeSigning
	// Unrestricted skips the EKU and key usage checks entirely.
	Unrestricted = chain.Unrestricted

	// DefaultAlgorithms is the full set of signature algorithms this
	// engine understands: ECDSA P-256/P-384 with SHA-256/SHA-384, RSA
	// PKCS#1 v1.5 and PSS with SHA-256/SHA-384/SHA-512, and Ed25519.
	DefaultAlgorithms = algo.Default()

	// DefaultBudget returns conservative defaults: 100 signature checks,
	// 10 intermediate path-build descents, per validation call.
	DefaultBudget = chain.DefaultBudget
)

// EndEntityCert is a parsed end-entity certificate, ready to be validated
// against a trust anchor set or checked against a subject name. The
// underlying byte slice passed to ParseEndEntityCert must outlive it.
type EndEntityCert struct {
	inner *cert.Cert
}

// ParseEndEntityCert decodes der as a single X.509 Certificate. It performs
// no semantic validation (expiry, signature, trust); call VerifyForUsage
// for that.
func ParseEndEntityCert(der []byte) (EndEntityCert, error) {
	c, err := cert.Parse(der)
	if err != nil {
		return EndEntityCert{}, err
	}
	return EndEntityCert{inner: c}, nil
}

// VerifyForUsage runs the RFC 5280 depth-first path-building search rooted
// at ee: it tries every entry of anchors before falling back to
// intermediates, verifying signatures, certificate self-consistency
// (validity window, basicConstraints, EKU/keyUsage for usage), name
// constraints, and (once a trust anchor is reached) revocation status
// against crls. now is a Unix timestamp; acceptExpiredCRL treats an
// otherwise-authentic but stale CRL as coverage rather than a failure. A
// nil error means a complete, trusted chain exists.
func (ee EndEntityCert) VerifyForUsage(
	intermediates []EndEntityCert,
	anchors []TrustAnchor,
	usage KeyUsage,
	now int64,
	crls []*CertRevocationList,
	acceptExpiredCRL bool,
	budget Budget,
) error {
	ims := make([]*cert.Cert, len(intermediates))
	for i, c := range intermediates {
		ims[i] = c.inner
	}
	return chain.Validate(ee.inner, ims, anchors, usage, DefaultAlgorithms, now, crls, acceptExpiredCRL, budget)
}

// VerifyIsValidForSubjectName reports whether ee's identity fields cover
// subject: a DNS subject is matched only against subjectAltName DNSName
// entries, an IP subject only against
// subjectAltName IPAddress entries. The subject DN's commonName is never
// consulted. It does not imply the certificate is trusted; call
// VerifyForUsage (or have already called it) to establish that.
func (ee EndEntityCert) VerifyIsValidForSubjectName(subject SubjectName) error {
	matched, err := subject.MatchesCert(ee.inner.SubjectRaw, ee.inner.SubjectAltName)
	if err != nil {
		return err
	}
	if !matched {
		return wpkierror.CertNotValidForName
	}
	return nil
}

// Intermediate adapts a parsed intermediate certificate for use in a
// VerifyForUsage call. It is just EndEntityCert with a name that reads
// better at call sites building an intermediates slice.
func Intermediate(der []byte) (EndEntityCert, error) {
	return ParseEndEntityCert(der)
}

// SignedData exposes the raw (data, algorithm, signature) triple of ee,
// for callers that want to verify it against an algorithm set other than
// DefaultAlgorithms.
func (ee EndEntityCert) SignedData() signeddata.SignedData {
	return ee.inner.SignedData
}
