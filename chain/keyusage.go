package chain

// KeyUsage selects the purpose the end-entity certificate must be usable
// for: an extended key usage OID the EE's ExtKeyUsage extension must
// contain (or anyExtendedKeyUsage), plus, for the three named purposes,
// the keyUsage digitalSignature bit a TLS peer certificate needs. Build a
// custom one with RequireEKU, or use Unrestricted to skip both checks.
type KeyUsage struct {
	ekuOID                  []byte
	requireDigitalSignature bool
	unrestricted            bool
}

// id-kp OIDs, RFC 5280 §4.2.1.12.
var (
	ekuServerAuth  = []byte{0x06, 0x08, 0x2B, 0x06, 0x01, 0x05, 0x05, 0x07, 0x03, 0x01}
	ekuClientAuth  = []byte{0x06, 0x08, 0x2B, 0x06, 0x01, 0x05, 0x05, 0x07, 0x03, 0x02}
	ekuCodeSigning = []byte{0x06, 0x08, 0x2B, 0x06, 0x01, 0x05, 0x05, 0x07, 0x03, 0x03}
	ekuAnyExtended = []byte{0x06, 0x04, 0x55, 0x1D, 0x25, 0x00}
)

// ServerAuth requires id-kp-serverAuth and the digitalSignature key usage
// bit, the profile a TLS client validating a server certificate uses.
var ServerAuth = KeyUsage{ekuOID: ekuServerAuth, requireDigitalSignature: true}

// ClientAuth requires id-kp-clientAuth and digitalSignature, the profile a
// TLS server validating a client certificate uses.
var ClientAuth = KeyUsage{ekuOID: ekuClientAuth, requireDigitalSignature: true}

// CodeSigning requires id-kp-codeSigning and digitalSignature.
var CodeSigning = KeyUsage{ekuOID: ekuCodeSigning, requireDigitalSignature: true}

// Unrestricted skips both the EKU and key usage checks entirely.
var Unrestricted = KeyUsage{unrestricted: true}

// RequireEKU builds a KeyUsage that requires the given raw OID content
// bytes (no tag/length) to appear in the EE's ExtKeyUsage extension, with
// no key usage bit requirement.
func RequireEKU(oidContent []byte) KeyUsage {
	oid := append([]byte{0x06, byte(len(oidContent))}, oidContent...)
	return KeyUsage{ekuOID: oid}
}
