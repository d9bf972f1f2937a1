package signeddata

// AlgorithmIdentifier encodings used throughout the algo package, per
// RFC 5280 §4.1.1.2:
//
//	AlgorithmIdentifier  ::=  SEQUENCE  {
//	    algorithm               OBJECT IDENTIFIER,
//	    parameters              ANY DEFINED BY algorithm OPTIONAL }
//
// Each constant holds only the content of that SEQUENCE (the OID plus its
// parameters), never the outer tag and length, because that is what
// PublicKeyAlgID, SignatureAlgID and the parsed SubjectPublicKeyInfo
// algorithm field all compare against.
var (
	// ECPublicKeyP256 identifies id-ecPublicKey with namedCurve secp256r1,
	// as it appears in a SubjectPublicKeyInfo.
	ECPublicKeyP256 = []byte{
		0x06, 0x07, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x02, 0x01,
		0x06, 0x08, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07,
	}

	// ECPublicKeyP384 identifies id-ecPublicKey with namedCurve secp384r1.
	ECPublicKeyP384 = []byte{
		0x06, 0x07, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x02, 0x01,
		0x06, 0x05, 0x2B, 0x81, 0x04, 0x00, 0x22,
	}

	// ECDSAWithSHA256 identifies ecdsa-with-SHA256.
	ECDSAWithSHA256 = []byte{0x06, 0x08, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x04, 0x03, 0x02}

	// ECDSAWithSHA384 identifies ecdsa-with-SHA384.
	ECDSAWithSHA384 = []byte{0x06, 0x08, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x04, 0x03, 0x03}

	// RSAEncryption identifies rsaEncryption, as it appears in a
	// SubjectPublicKeyInfo. Its parameters are NULL, per RFC 3279 §2.3.1.
	RSAEncryption = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x01,
		0x05, 0x00,
	}

	// RSAPKCS1SHA256 identifies sha256WithRSAEncryption.
	RSAPKCS1SHA256 = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0B,
		0x05, 0x00,
	}

	// RSAPKCS1SHA384 identifies sha384WithRSAEncryption.
	RSAPKCS1SHA384 = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0C,
		0x05, 0x00,
	}

	// RSAPKCS1SHA512 identifies sha512WithRSAEncryption.
	RSAPKCS1SHA512 = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0D,
		0x05, 0x00,
	}

	// RSAPSSSHA256 identifies rsassaPss with SHA-256 for both the digest
	// and the MGF1 hash, and a 32-byte salt, per RFC 4055 §3.1.
	RSAPSSSHA256 = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0A,
		0x30, 0x34,
		0xA0, 0x0F, 0x30, 0x0D, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00,
		0xA1, 0x1C, 0x30, 0x1A, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x08,
		0x30, 0x0D, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00,
		0xA2, 0x05, 0x02, 0x01, 0x20,
	}

	// RSAPSSSHA384 identifies rsassaPss with SHA-384 and a 48-byte salt.
	RSAPSSSHA384 = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0A,
		0x30, 0x34,
		0xA0, 0x0F, 0x30, 0x0D, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x02, 0x05, 0x00,
		0xA1, 0x1C, 0x30, 0x1A, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x08,
		0x30, 0x0D, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x02, 0x05, 0x00,
		0xA2, 0x05, 0x02, 0x01, 0x30,
	}

	// RSAPSSSHA512 identifies rsassaPss with SHA-512 and a 64-byte salt.
	RSAPSSSHA512 = []byte{
		0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x0A,
		0x30, 0x34,
		0xA0, 0x0F, 0x30, 0x0D, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00,
		0xA1, 0x1C, 0x30, 0x1A, 0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x01, 0x08,
		0x30, 0x0D, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00,
		0xA2, 0x05, 0x02, 0x01, 0x40,
	}

	// Ed25519 identifies id-Ed25519, used both as the SubjectPublicKeyInfo
	// algorithm and as the signatureAlgorithm; RFC 8410 requires parameters
	// to be absent in both places, so the same encoding serves as both
	// PublicKeyAlgID and SignatureAlgID.
	Ed25519 = []byte{0x06, 0x03, 0x2B, 0x65, 0x70}
)
