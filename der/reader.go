// Package der implements a strict, non-allocating reader for the
// Distinguished Encoding Rules subset of ASN.1 used throughout X.509. It
// never copies the input: every value it returns is a subslice of the byte
// slice the caller handed it, so the caller is responsible for keeping that
// slice alive for as long as any returned value is in use.
package der

import "fmt"

// ErrBadDER is returned for any malformed encoding the reader refuses to
// accept. The reader deliberately has only this one error value; it carries
// no further detail about which rule was broken.
var ErrBadDER = fmt.Errorf("der: malformed or disallowed encoding")

// Reader is a cursor over a borrowed byte slice. The zero value is not
// usable; construct one with NewReader.
type Reader struct {
	input []byte
	pos   int
}

// NewReader returns a Reader positioned at the start of input. input is not
// copied.
func NewReader(input []byte) *Reader {
	return &Reader{input: input}
}

// AtEnd reports whether every byte of the input has been consumed.
func (r *Reader) AtEnd() bool {
	return r.pos == len(r.input)
}

// offset returns the current cursor position, used by ReadPartial to slice
// out exactly the bytes a sub-parse consumed.
func (r *Reader) offset() int {
	return r.pos
}

func (r *Reader) readByte() (byte, error) {
	if r.pos >= len(r.input) {
		return 0, ErrBadDER
	}
	b := r.input[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes consumes and returns exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.input) {
		return nil, ErrBadDER
	}
	v := r.input[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Peek reports whether the next byte equals the raw tag octet, without
// consuming it. It returns false (never an error) at end of input.
func (r *Reader) Peek(tag Tag) bool {
	if r.pos >= len(r.input) {
		return false
	}
	return r.input[r.pos] == byte(tag)
}

// readLength decodes a DER length octet sequence per X.690 8.1.3, rejecting
// indefinite length (0x80) and non-minimal long-form encodings.
func (r *Reader) readLength() (int, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	if b&0x80 == 0 {
		return int(b), nil
	}
	n := int(b & 0x7F)
	if n == 0 {
		// 0x80 is the indefinite-length marker; BER allows it, DER forbids it.
		return 0, ErrBadDER
	}
	if n > 4 {
		return 0, ErrBadDER
	}
	lenBytes, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	if lenBytes[0] == 0 {
		// Leading zero octet: the length could have been encoded shorter.
		return 0, ErrBadDER
	}
	length := 0
	for _, b := range lenBytes {
		length = length<<8 | int(b)
	}
	if length < 128 {
		// Short form would have sufficed; long form is non-minimal.
		return 0, ErrBadDER
	}
	return length, nil
}

// ReadTagAndGetValue reads one TLV and returns its raw tag octet and value
// bytes (the V, not the TL).
func (r *Reader) ReadTagAndGetValue() (Tag, []byte, error) {
	tagByte, err := r.readByte()
	if err != nil {
		return 0, nil, err
	}
	// High-tag-number form (low 5 bits all set) is never used by anything
	// this package needs to parse; X.509 tags all fit in one octet.
	if tagByte&0x1F == 0x1F {
		return 0, nil, ErrBadDER
	}
	length, err := r.readLength()
	if err != nil {
		return 0, nil, err
	}
	value, err := r.ReadBytes(length)
	if err != nil {
		return 0, nil, err
	}
	return Tag(tagByte), value, nil
}

// ExpectTagAndGetValue reads one TLV, requiring its tag to equal tag, and
// returns the value bytes.
func (r *Reader) ExpectTagAndGetValue(tag Tag) ([]byte, error) {
	actual, value, err := r.ReadTagAndGetValue()
	if err != nil {
		return nil, err
	}
	if actual != tag {
		return nil, ErrBadDER
	}
	return value, nil
}

// ExpectTagAndGetValueLimited is like ExpectTagAndGetValue but additionally
// rejects a TLV whose total encoded length (tag+length+value) exceeds
// limit. (cert.Parse enforces its own 64 KiB bound on the outermost
// Certificate SEQUENCE by checking the encoded length itself.)
func (r *Reader) ExpectTagAndGetValueLimited(tag Tag, limit int) ([]byte, error) {
	start := r.offset()
	value, err := r.ExpectTagAndGetValue(tag)
	if err != nil {
		return nil, err
	}
	if r.offset()-start > limit {
		return nil, ErrBadDER
	}
	return value, nil
}

// ReadPartial runs fn over r and returns the exact slice of input that fn
// consumed (the full tag+length+value encoding, not just a value), together
// with fn's own return value. This is how a caller obtains both the decoded
// contents of a SEQUENCE and the raw bytes of that SEQUENCE for later
// signature verification — see signeddata.SignedData.
func ReadPartial[T any](r *Reader, fn func(*Reader) (T, error)) ([]byte, T, error) {
	start := r.offset()
	v, err := fn(r)
	if err != nil {
		var zero T
		return nil, zero, err
	}
	return r.input[start:r.offset()], v, nil
}

// Nested reads one TLV with the given tag and runs fn over a fresh Reader
// scoped to its value, requiring fn to consume the value exactly.
func Nested(r *Reader, tag Tag, fn func(*Reader) error) error {
	value, err := r.ExpectTagAndGetValue(tag)
	if err != nil {
		return err
	}
	inner := NewReader(value)
	if err := fn(inner); err != nil {
		return err
	}
	if !inner.AtEnd() {
		return ErrBadDER
	}
	return nil
}

// ReadOptionalTag reads and returns the value of a TLV with the given tag
// if present, or (nil, false, nil) if the next tag does not match.
func ReadOptionalTag(r *Reader, tag Tag) ([]byte, bool, error) {
	if !r.Peek(tag) {
		return nil, false, nil
	}
	v, err := r.ExpectTagAndGetValue(tag)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Boolean reads a DER BOOLEAN, requiring the canonical TRUE (0xFF) or FALSE
// (0x00) encoding.
func Boolean(r *Reader) (bool, error) {
	v, err := r.ExpectTagAndGetValue(BooleanTag)
	if err != nil {
		return false, err
	}
	if len(v) != 1 {
		return false, ErrBadDER
	}
	switch v[0] {
	case 0x00:
		return false, nil
	case 0xFF:
		return true, nil
	default:
		return false, ErrBadDER
	}
}

// BooleanWithDefault reads an OPTIONAL BOOLEAN, returning defaultValue if
// the tag is absent. DER forbids encoding a DEFAULT value explicitly, but
// this reader does not enforce that on decode, matching common real-world
// laxness for this one field (cA in BasicConstraints).
func BooleanWithDefault(r *Reader, defaultValue bool) (bool, error) {
	if !r.Peek(BooleanTag) {
		return defaultValue, nil
	}
	return Boolean(r)
}

// PositiveInteger reads a DER INTEGER known to be non-negative and returns
// its big-endian magnitude with at most one leading 0x00 sign-disambiguation
// byte stripped. It does not accept a negative encoding.
func PositiveInteger(r *Reader) ([]byte, error) {
	v, err := r.ExpectTagAndGetValue(IntegerTag)
	if err != nil {
		return nil, err
	}
	return positiveIntegerValue(v)
}

func positiveIntegerValue(v []byte) ([]byte, error) {
	if len(v) == 0 {
		return nil, ErrBadDER
	}
	if v[0]&0x80 != 0 {
		return nil, ErrBadDER // negative
	}
	if len(v) > 1 && v[0] == 0x00 && v[1]&0x80 == 0 {
		return nil, ErrBadDER // redundant leading zero
	}
	if v[0] == 0x00 && len(v) > 1 {
		return v[1:], nil
	}
	return v, nil
}

// Integer reads a raw DER INTEGER's content bytes verbatim (the minimally
// encoded two's-complement representation), without stripping a sign byte.
// Used for serial numbers, whose content bytes are compared byte-exact.
func Integer(r *Reader) ([]byte, error) {
	v, err := r.ExpectTagAndGetValue(IntegerTag)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, ErrBadDER
	}
	if len(v) > 1 && ((v[0] == 0x00 && v[1]&0x80 == 0) || (v[0] == 0xFF && v[1]&0x80 != 0)) {
		return nil, ErrBadDER
	}
	return v, nil
}

// BitStringNoUnusedBits reads a DER BIT STRING whose first content octet
// (the unused-bits count) must be zero, and returns the remaining content
// bytes. Used for signatures and SPKI key bits, which are always a whole
// number of octets.
func BitStringNoUnusedBits(r *Reader) ([]byte, error) {
	v, err := r.ExpectTagAndGetValue(BitStringTag)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, ErrBadDER
	}
	if v[0] != 0x00 {
		return nil, ErrBadDER
	}
	return v[1:], nil
}
