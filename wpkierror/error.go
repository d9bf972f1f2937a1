// Package wpkierror defines the single flat error taxonomy returned by
// every layer of the validation engine (der, cert, signeddata, name, crl,
// chain) and by its public surface. A flat, non-exhaustive-but-complete set
// of sentinel values is deliberate: callers branch on the returned Error,
// never on a wrapped message string.
package wpkierror

// Error is one of the outcomes a validation can end in. The zero value is
// not a valid Error; construct one only from the named constants.
type Error int

// The full taxonomy, grouped by layer for readability only; the numeric
// values carry no meaning of their own.
const (
	_ Error = iota
	BadDER
	BadDERTime
	CAUsedAsEndEntity
	CertExpired
	CertNotValidYet
	CertNotValidForName
	CertRevoked
	CRLExpired
	CRLInvalidSignatureForPublicKey
	CRLUnsupportedCertVersion
	CRLUnsupportedCriticalExtension
	CRLUnsupportedDeltaCRL
	CRLUnsupportedIndirectCRL
	EndEntityUsedAsCA
	ExtensionValueInvalid
	InvalidCertValidity
	InvalidSerialNumber
	InvalidSignatureForPublicKey
	IssuerNotCRLSigner
	MaximumPathBuildCallsExceeded
	MaximumSignatureChecksExceeded
	MissingOrMalformedExtensions
	NameConstraintViolation
	PathLenConstraintViolated
	RequiredEKUNotFound
	TrailingData
	UnknownIssuer
	UnknownRevocationStatus
	UnsupportedCertVersion
	UnsupportedCriticalExtension
	UnsupportedSignatureAlgorithm
	UnsupportedSignatureAlgorithmForPublicKey
)

var names = map[Error]string{
	BadDER:                                    "bad DER",
	BadDERTime:                                "bad DER time",
	CAUsedAsEndEntity:                         "CA certificate used as end entity",
	CertExpired:                               "certificate expired",
	CertNotValidYet:                           "certificate not valid yet",
	CertNotValidForName:                       "certificate not valid for name",
	CertRevoked:                               "certificate revoked",
	CRLExpired:                                "CRL expired",
	CRLInvalidSignatureForPublicKey:           "CRL signature invalid for public key",
	CRLUnsupportedCertVersion:                 "CRL uses unsupported certificate list version",
	CRLUnsupportedCriticalExtension:           "CRL has unsupported critical extension",
	CRLUnsupportedDeltaCRL:                    "delta CRLs are unsupported",
	CRLUnsupportedIndirectCRL:                 "indirect CRL without matching IDP",
	EndEntityUsedAsCA:                         "end-entity certificate used as CA",
	ExtensionValueInvalid:                     "extension value invalid",
	InvalidCertValidity:                       "invalid certificate validity",
	InvalidSerialNumber:                       "invalid serial number",
	InvalidSignatureForPublicKey:              "invalid signature for public key",
	IssuerNotCRLSigner:                        "issuer is not the CRL signer",
	MaximumPathBuildCallsExceeded:             "maximum path build calls exceeded",
	MaximumSignatureChecksExceeded:            "maximum signature checks exceeded",
	MissingOrMalformedExtensions:              "missing or malformed extensions",
	NameConstraintViolation:                   "name constraint violation",
	PathLenConstraintViolated:                 "path length constraint violated",
	RequiredEKUNotFound:                       "required extended key usage not found",
	TrailingData:                              "trailing data",
	UnknownIssuer:                             "unknown issuer",
	UnknownRevocationStatus:                   "unknown revocation status",
	UnsupportedCertVersion:                    "unsupported certificate version",
	UnsupportedCriticalExtension:              "unsupported critical extension",
	UnsupportedSignatureAlgorithm:             "unsupported signature algorithm",
	UnsupportedSignatureAlgorithmForPublicKey: "unsupported signature algorithm for public key",
}

func (e Error) Error() string {
	if s, ok := names[e]; ok {
		return s
	}
	return "unknown webpki error"
}

// Priority ranks errors for the "most specific failure on the deepest
// partial path" rule: lower index wins when the path builder has to pick
// one failure among several dead-end candidates at the same search depth.
var priority = []Error{
	InvalidCertValidity,
	CertRevoked,
	UnknownRevocationStatus,
	UnsupportedSignatureAlgorithmForPublicKey,
	UnsupportedSignatureAlgorithm,
	InvalidSignatureForPublicKey,
	UnknownIssuer,
}

func rank(e Error) int {
	for i, p := range priority {
		if p == e {
			return i
		}
	}
	// Anything not in the explicit ordering (cert-shape rejections such as
	// PathLenConstraintViolated, RequiredEKUNotFound, NameConstraintViolation,
	// UnsupportedCriticalExtension, ...) is more specific than any of the
	// ranked outcomes: it reflects a concrete, inspected defect rather than
	// "no candidate issuer found at all". CertExpired and CertNotValidYet
	// fall here too: they are the per-node refinement of the same validity
	// check InvalidCertValidity reports in aggregate, so they outrank it on
	// the same "more specific wins" basis.
	return -1
}

// MoreSpecific reports whether candidate should replace current as the
// "best so far" failure recorded during path search.
func MoreSpecific(candidate, current Error) bool {
	if current == 0 {
		return true
	}
	rc, rcur := rank(candidate), rank(current)
	if rc == -1 && rcur == -1 {
		return false // keep the first concrete defect found
	}
	if rc == -1 {
		return true
	}
	if rcur == -1 {
		return false
	}
	return rc < rcur
}
