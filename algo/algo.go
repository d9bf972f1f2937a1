// Package algo supplies the concrete signature verification algorithms
// consumed by package signeddata. Each exported value pairs an
// AlgorithmIdentifier from signeddata with a crypto/ecdsa, crypto/rsa or
// crypto/ed25519 implementation; nothing outside this package touches a key
// type directly. Callers assemble the subset they want to trust with
// Default() or by listing a smaller []signeddata.Algorithm themselves.
//
// This package is the one deliberate stdlib-only corner of the engine:
// crypto/ecdsa, crypto/rsa and crypto/ed25519 already implement the
// signature schemes a web relying party needs to verify (ECDSA P-256/
// P-384, RSA PKCS#1 v1.5 and PSS, Ed25519), and no third-party library in
// the ecosystem improves on the standard library for these primitives.
package algo

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/asn1"
	"math/big"

	"github.com/japaric/webpki/signeddata"
)

var errVerify = verifyError("algo: signature verification failed")

type verifyError string

func (e verifyError) Error() string { return string(e) }

type ecdsaSignature struct {
	R, S *big.Int
}

type ecdsaAlg struct {
	curve     elliptic.Curve
	publicKey []byte
	signature []byte
	hash      func([]byte) []byte
}

func (a ecdsaAlg) PublicKeyAlgID() []byte { return a.publicKey }
func (a ecdsaAlg) SignatureAlgID() []byte { return a.signature }

func (a ecdsaAlg) VerifySignature(publicKey, message, signature []byte) error {
	x, y := elliptic.Unmarshal(a.curve, publicKey)
	if x == nil {
		return errVerify
	}
	var sig ecdsaSignature
	rest, err := asn1.Unmarshal(signature, &sig)
	if err != nil || len(rest) != 0 {
		return errVerify
	}
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return errVerify
	}
	pub := &ecdsa.PublicKey{Curve: a.curve, X: x, Y: y}
	if !ecdsa.Verify(pub, a.hash(message), sig.R, sig.S) {
		return errVerify
	}
	return nil
}

func parseRSAPublicKey(publicKey []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKCS1PublicKey(publicKey)
	if err != nil {
		return nil, errVerify
	}
	return pub, nil
}

type rsaPKCS1Alg struct {
	publicKey []byte
	signature []byte
	hash      func([]byte) []byte
	cryptoAlg crypto.Hash
}

func (a rsaPKCS1Alg) PublicKeyAlgID() []byte { return a.publicKey }
func (a rsaPKCS1Alg) SignatureAlgID() []byte { return a.signature }

func (a rsaPKCS1Alg) VerifySignature(publicKey, message, signature []byte) error {
	pub, err := parseRSAPublicKey(publicKey)
	if err != nil {
		return err
	}
	if err := rsa.VerifyPKCS1v15(pub, a.cryptoAlg, a.hash(message), signature); err != nil {
		return errVerify
	}
	return nil
}

type rsaPSSAlg struct {
	publicKey []byte
	signature []byte
	hash      func([]byte) []byte
	opts      *rsa.PSSOptions
}

func (a rsaPSSAlg) PublicKeyAlgID() []byte { return a.publicKey }
func (a rsaPSSAlg) SignatureAlgID() []byte { return a.signature }

func (a rsaPSSAlg) VerifySignature(publicKey, message, signature []byte) error {
	pub, err := parseRSAPublicKey(publicKey)
	if err != nil {
		return err
	}
	if err := rsa.VerifyPSS(pub, a.opts.Hash, a.hash(message), signature, a.opts); err != nil {
		return errVerify
	}
	return nil
}

type ed25519Alg struct{}

func (ed25519Alg) PublicKeyAlgID() []byte { return signeddata.Ed25519 }
func (ed25519Alg) SignatureAlgID() []byte { return signeddata.Ed25519 }

func (ed25519Alg) VerifySignature(publicKey, message, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return errVerify
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return errVerify
	}
	return nil
}

// ECDSAP256SHA256 verifies ecdsa-with-SHA256 signatures over id-ecPublicKey
// / secp256r1 keys.
var ECDSAP256SHA256 signeddata.Algorithm = ecdsaAlg{
	curve:     elliptic.P256(),
	publicKey: signeddata.ECPublicKeyP256,
	signature: signeddata.ECDSAWithSHA256,
	hash:      sha256Sum,
}

// ECDSAP384SHA384 verifies ecdsa-with-SHA384 signatures over id-ecPublicKey
// / secp384r1 keys.
var ECDSAP384SHA384 signeddata.Algorithm = ecdsaAlg{
	curve:     elliptic.P384(),
	publicKey: signeddata.ECPublicKeyP384,
	signature: signeddata.ECDSAWithSHA384,
	hash:      sha384Sum,
}

// RSAPKCS1SHA256 verifies sha256WithRSAEncryption signatures.
var RSAPKCS1SHA256 signeddata.Algorithm = rsaPKCS1Alg{
	publicKey: signeddata.RSAEncryption,
	signature: signeddata.RSAPKCS1SHA256,
	hash:      sha256Sum,
	cryptoAlg: crypto.SHA256,
}

// RSAPKCS1SHA384 verifies sha384WithRSAEncryption signatures.
var RSAPKCS1SHA384 signeddata.Algorithm = rsaPKCS1Alg{
	publicKey: signeddata.RSAEncryption,
	signature: signeddata.RSAPKCS1SHA384,
	hash:      sha384Sum,
	cryptoAlg: crypto.SHA384,
}

// RSAPKCS1SHA512 verifies sha512WithRSAEncryption signatures.
var RSAPKCS1SHA512 signeddata.Algorithm = rsaPKCS1Alg{
	publicKey: signeddata.RSAEncryption,
	signature: signeddata.RSAPKCS1SHA512,
	hash:      sha512Sum,
	cryptoAlg: crypto.SHA512,
}

// RSAPSSSHA256 verifies rsassaPss signatures using SHA-256 for both the
// digest and the MGF1 hash, with a 32-byte salt.
var RSAPSSSHA256 signeddata.Algorithm = rsaPSSAlg{
	publicKey: signeddata.RSAEncryption,
	signature: signeddata.RSAPSSSHA256,
	hash:      sha256Sum,
	opts:      &rsa.PSSOptions{SaltLength: 32, Hash: crypto.SHA256},
}

// RSAPSSSHA384 verifies rsassaPss signatures using SHA-384, salt length 48.
var RSAPSSSHA384 signeddata.Algorithm = rsaPSSAlg{
	publicKey: signeddata.RSAEncryption,
	signature: signeddata.RSAPSSSHA384,
	hash:      sha384Sum,
	opts:      &rsa.PSSOptions{SaltLength: 48, Hash: crypto.SHA384},
}

// RSAPSSSHA512 verifies rsassaPss signatures using SHA-512, salt length 64.
var RSAPSSSHA512 signeddata.Algorithm = rsaPSSAlg{
	publicKey: signeddata.RSAEncryption,
	signature: signeddata.RSAPSSSHA512,
	hash:      sha512Sum,
	opts:      &rsa.PSSOptions{SaltLength: 64, Hash: crypto.SHA512},
}

// Ed25519 verifies id-Ed25519 signatures.
var Ed25519 signeddata.Algorithm = ed25519Alg{}

// Default returns the full set of algorithms this engine ships, in the
// order a caller constructing a chain validator would normally want them
// tried.
func Default() []signeddata.Algorithm {
	return []signeddata.Algorithm{
		ECDSAP256SHA256,
		ECDSAP384SHA384,
		Ed25519,
		RSAPKCS1SHA256,
		RSAPKCS1SHA384,
		RSAPKCS1SHA512,
		RSAPSSSHA256,
		RSAPSSSHA384,
		RSAPSSSHA512,
	}
}

func sha256Sum(b []byte) []byte { h := sha256.Sum256(b); return h[:] }
func sha384Sum(b []byte) []byte { h := sha512.Sum384(b); return h[:] }
func sha512Sum(b []byte) []byte { h := sha512.Sum512(b); return h[:] }
