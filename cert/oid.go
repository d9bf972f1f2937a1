package cert

// DER content bytes (no tag/length) of the X.509v3 extension OIDs the
// validator recognizes. A critical extension whose OID is not one of these
// causes the certificate to be rejected — see chain.checkSelfConsistency.
var (
	oidSubjectKeyIdentifier   = []byte{0x55, 0x1D, 0x0E}
	oidKeyUsage               = []byte{0x55, 0x1D, 0x0F}
	oidSubjectAltName         = []byte{0x55, 0x1D, 0x11}
	oidBasicConstraints       = []byte{0x55, 0x1D, 0x13}
	oidNameConstraints        = []byte{0x55, 0x1D, 0x1E}
	oidCRLDistributionPoints  = []byte{0x55, 0x1D, 0x1F}
	oidCertificatePolicies    = []byte{0x55, 0x1D, 0x20}
	oidAuthorityKeyIdentifier = []byte{0x55, 0x1D, 0x23}
	oidExtKeyUsage            = []byte{0x55, 0x1D, 0x25}
)

// recognizedCritical is the set of extension OIDs this validator
// understands well enough that it is safe to mark them critical.
// certificatePolicies is recognized-but-ignored: this engine does not
// process policy constraints but tolerates the extension, critical or not,
// rather than rejecting every CA/B Forum compliant certificate that
// carries it.
var recognizedCritical = [][]byte{
	oidSubjectKeyIdentifier,
	oidKeyUsage,
	oidSubjectAltName,
	oidBasicConstraints,
	oidNameConstraints,
	oidCRLDistributionPoints,
	oidCertificatePolicies,
	oidAuthorityKeyIdentifier,
	oidExtKeyUsage,
}

func oidEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isRecognized(oid []byte) bool {
	for _, r := range recognizedCritical {
		if oidEqual(oid, r) {
			return true
		}
	}
	return false
}
