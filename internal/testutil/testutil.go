// Package testutil builds small X.509 certificate chains and CRLs in
// memory for use by the package tests throughout this module: it mints an
// arbitrary chain of CAs and leaves, in memory, for one test. The
// cmd/webpkictl command line has no issuing CA of its own; this package is
// the module's only certificate and CRL minter.
package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/japaric/webpki/trustanchor"
)

// KeyAlgo selects the key pair algorithm used for a CA or leaf: ECDSA
// P-256, RSA-2048 or Ed25519.
type KeyAlgo string

const (
	ECDSAP256 KeyAlgo = "ecdsa-p256"
	RSA2048   KeyAlgo = "rsa-2048"
	Ed25519   KeyAlgo = "ed25519"
)

func generateKeyPair(ka KeyAlgo) (crypto.Signer, error) {
	switch ka {
	case ECDSAP256:
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case RSA2048:
		return rsa.GenerateKey(rand.Reader, 2048)
	case Ed25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, err
	default:
		return nil, fmt.Errorf("testutil: unsupported key algorithm %q", ka)
	}
}

func computeSKI(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	hash := sha1.Sum(der)
	return hash[:], nil
}

func sigAlgorithm(key crypto.Signer) x509.SignatureAlgorithm {
	switch key.(type) {
	case *ecdsa.PrivateKey:
		return x509.ECDSAWithSHA256
	case *rsa.PrivateKey:
		return x509.SHA256WithRSA
	case ed25519.PrivateKey:
		return x509.PureEd25519
	default:
		return x509.UnknownSignatureAlgorithm
	}
}

var serialCounter = big.NewInt(0)

func nextSerial() *big.Int {
	serialCounter = new(big.Int).Add(serialCounter, big.NewInt(1))
	return new(big.Int).Set(serialCounter)
}

// CA is an in-memory certificate authority: a key pair plus the DER
// encoding of its own certificate, self-signed if it is a root or signed
// by its issuer otherwise. It can issue further intermediates, leaves and
// CRLs.
type CA struct {
	key    crypto.Signer
	cert   *x509.Certificate
	CertDER []byte
}

// RootOptions customizes NewRoot beyond its required arguments.
type RootOptions struct {
	PermittedDNS []string
	ExcludedDNS  []string
}

// NewRoot mints a self-signed root CA certificate.
func NewRoot(subject pkix.Name, ka KeyAlgo, notBefore, notAfter time.Time, opts RootOptions) (*CA, error) {
	key, err := generateKeyPair(ka)
	if err != nil {
		return nil, err
	}
	ski, err := computeSKI(key.Public())
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          ski,
		SignatureAlgorithm:    sigAlgorithm(key),
	}
	applyNameConstraints(tmpl, opts.PermittedDNS, opts.ExcludedDNS)

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &CA{key: key, cert: parsed, CertDER: der}, nil
}

// IntermediateOptions customizes IssueIntermediate beyond its required
// arguments.
type IntermediateOptions struct {
	HasPathLen   bool
	PathLen      int
	PermittedDNS []string
	ExcludedDNS  []string
}

// IssueIntermediate mints a CA certificate signed by ca, usable as the
// issuer of further intermediates or leaves.
func (ca *CA) IssueIntermediate(subject pkix.Name, ka KeyAlgo, notBefore, notAfter time.Time, opts IntermediateOptions) (*CA, error) {
	key, err := generateKeyPair(ka)
	if err != nil {
		return nil, err
	}
	ski, err := computeSKI(key.Public())
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            opts.PathLen,
		MaxPathLenZero:        opts.HasPathLen && opts.PathLen == 0,
		SubjectKeyId:          ski,
		AuthorityKeyId:        ca.cert.SubjectKeyId,
		SignatureAlgorithm:    sigAlgorithm(ca.key),
	}
	if !opts.HasPathLen {
		tmpl.MaxPathLen = -1
	}
	applyNameConstraints(tmpl, opts.PermittedDNS, opts.ExcludedDNS)

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, key.Public(), ca.key)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &CA{key: key, cert: parsed, CertDER: der}, nil
}

// LeafOptions customizes IssueLeaf beyond its required arguments.
type LeafOptions struct {
	DNSNames []string
	IPs      []net.IP
	EKUs     []x509.ExtKeyUsage
	// NoEKU omits the ExtKeyUsage extension entirely, for tests of
	// RequiredEKUNotFound.
	NoEKU bool
	// NoKeyUsage omits the KeyUsage extension entirely.
	NoKeyUsage bool
}

// IssueLeaf mints an end-entity certificate signed by ca.
func (ca *CA) IssueLeaf(subject pkix.Name, ka KeyAlgo, notBefore, notAfter time.Time, opts LeafOptions) ([]byte, error) {
	key, err := generateKeyPair(ka)
	if err != nil {
		return nil, err
	}
	ski, err := computeSKI(key.Public())
	if err != nil {
		return nil, err
	}
	ekus := opts.EKUs
	if ekus == nil && !opts.NoEKU {
		ekus = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	}
	tmpl := &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		BasicConstraintsValid: true,
		IsCA:                  false,
		SubjectKeyId:          ski,
		AuthorityKeyId:        ca.cert.SubjectKeyId,
		DNSNames:              opts.DNSNames,
		IPAddresses:           opts.IPs,
		ExtKeyUsage:           ekus,
		SignatureAlgorithm:    sigAlgorithm(ca.key),
	}
	if !opts.NoKeyUsage {
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, key.Public(), ca.key)
	if err != nil {
		return nil, err
	}
	return der, nil
}

// RevokedCert is one entry of a CRL built with IssueCRL.
type RevokedCert struct {
	Serial         *big.Int
	RevocationTime time.Time
	ReasonCode     int
}

// IssueCRL mints a CRL signed by ca listing revoked, scoped (via its
// issuer field) to certificates issued by ca. extraExts, if given, are
// appended verbatim, letting a test inject an extension crypto/x509 has no
// template field for (the issuingDistributionPoint extension, notably).
func (ca *CA) IssueCRL(revoked []RevokedCert, thisUpdate, nextUpdate time.Time, number int64, extraExts ...pkix.Extension) ([]byte, error) {
	var entries []x509.RevocationListEntry
	for _, r := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   r.Serial,
			RevocationTime: r.RevocationTime,
			ReasonCode:     r.ReasonCode,
		})
	}
	tmpl := &x509.RevocationList{
		RevokedCertificateEntries: entries,
		Number:                    big.NewInt(number),
		ThisUpdate:                thisUpdate,
		NextUpdate:                nextUpdate,
		SignatureAlgorithm:        sigAlgorithm(ca.key),
		ExtraExtensions:           extraExts,
	}
	return x509.CreateRevocationList(rand.Reader, tmpl, ca.cert, ca.key)
}

// IssuingDistributionPointOnlySomeReasonsExt builds a raw
// issuingDistributionPoint extension (RFC 5280 §5.2.5) carrying only the
// onlySomeReasons field, for tests that need a partial-reason CRL.
func IssuingDistributionPointOnlySomeReasonsExt() pkix.Extension {
	// onlySomeReasons [3] IMPLICIT ReasonFlags: a context-specific
	// primitive tag replaces the universal BIT STRING tag, so the content
	// is the BIT STRING's own (unused-bits-count, data) pair, not a
	// nested TLV. One unused bit, with bit 1 (keyCompromise) set.
	onlySomeReasons := []byte{0x83, 0x02, 0x07, 0x40}
	idp := make([]byte, 0, 2+len(onlySomeReasons))
	idp = append(idp, 0x30, byte(len(onlySomeReasons)))
	idp = append(idp, onlySomeReasons...)
	return pkix.Extension{
		Id:    asn1.ObjectIdentifier{2, 5, 29, 28},
		Value: idp,
	}
}

// TrustAnchor builds a trustanchor.TrustAnchor from ca's own certificate.
func (ca *CA) TrustAnchor() (trustanchor.TrustAnchor, error) {
	return trustanchor.ParseCertificate(ca.CertDER)
}

// Serial returns the big-endian two's-complement content bytes of n, the
// same representation cert.Cert.SerialNumber carries.
func Serial(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) == 0 || b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}
	return b
}

func applyNameConstraints(tmpl *x509.Certificate, permittedDNS, excludedDNS []string) {
	if len(permittedDNS) > 0 || len(excludedDNS) > 0 {
		tmpl.PermittedDNSDomainsCritical = false
		tmpl.PermittedDNSDomains = permittedDNS
		tmpl.ExcludedDNSDomains = excludedDNS
	}
}
