package chain

import (
	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/wpkierror"
)

const digitalSignatureBit = 0

// parseExtKeyUsage decodes ExtKeyUsage ::= SEQUENCE OF KeyPurposeId and
// returns each entry as its raw OBJECT IDENTIFIER TLV, directly comparable
// against ekuServerAuth, ekuAnyExtended and the like.
func parseExtKeyUsage(raw []byte) ([][]byte, error) {
	var oids [][]byte
	err := der.Nested(der.NewReader(raw), der.Sequence, func(seq *der.Reader) error {
		for !seq.AtEnd() {
			full, _, err := der.ReadPartial(seq, func(rr *der.Reader) (struct{}, error) {
				_, err := rr.ExpectTagAndGetValue(der.OIDTag)
				return struct{}{}, err
			})
			if err != nil {
				return err
			}
			oids = append(oids, full)
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(wpkierror.Error); ok {
			return nil, err
		}
		return nil, wpkierror.BadDER
	}
	return oids, nil
}

// keyUsageBitSet reports whether bit is set in a KeyUsage extension's raw
// value (the full BIT STRING TLV, extnValue's content). KeyUsage's trailing
// zero bits are routinely omitted from the encoding, so a bit beyond the
// encoded length is simply unset rather than an error.
func keyUsageBitSet(raw []byte, bit int) (bool, error) {
	v, err := der.NewReader(raw).ExpectTagAndGetValue(der.BitStringTag)
	if err != nil {
		return false, wpkierror.BadDER
	}
	if len(v) == 0 {
		return false, wpkierror.BadDER
	}
	unused := int(v[0])
	if unused < 0 || unused > 7 {
		return false, wpkierror.BadDER
	}
	bits := v[1:]
	byteIdx := bit / 8
	if byteIdx >= len(bits) {
		return false, nil
	}
	mask := byte(0x80 >> uint(bit%8))
	return bits[byteIdx]&mask != 0, nil
}
