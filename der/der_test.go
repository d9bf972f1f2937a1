package der

import "testing"

func TestReadTagAndGetValueRoundTrips(t *testing.T) {
	r := NewReader([]byte{0x02, 0x01, 0x05})
	tag, value, err := r.ReadTagAndGetValue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != IntegerTag {
		t.Fatalf("got tag %#x, want IntegerTag", tag)
	}
	if len(value) != 1 || value[0] != 0x05 {
		t.Fatalf("got value %v, want [5]", value)
	}
	if !r.AtEnd() {
		t.Fatal("expected reader to be exhausted")
	}
}

func TestReadLengthRejectsIndefiniteLength(t *testing.T) {
	r := NewReader([]byte{0x30, 0x80})
	if _, _, err := r.ReadTagAndGetValue(); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestReadLengthRejectsNonMinimalLongForm(t *testing.T) {
	// Length 5 encoded in long form (0x81 0x05) when short form would do.
	r := NewReader([]byte{0x04, 0x81, 0x05, 1, 2, 3, 4, 5})
	if _, _, err := r.ReadTagAndGetValue(); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestReadLengthRejectsLeadingZeroInLongForm(t *testing.T) {
	r := NewReader([]byte{0x04, 0x82, 0x00, 0x80})
	if _, _, err := r.ReadTagAndGetValue(); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestReadBytesRejectsTruncatedInput(t *testing.T) {
	r := NewReader([]byte{0x04, 0x05, 1, 2})
	if _, _, err := r.ReadTagAndGetValue(); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := NewReader([]byte{0x30, 0x00})
	if !r.Peek(Sequence) {
		t.Fatal("expected Peek to report the sequence tag")
	}
	if r.Peek(Set) {
		t.Fatal("expected Peek to reject a mismatched tag")
	}
	// Peek must not have advanced the cursor.
	if _, _, err := r.ReadTagAndGetValue(); err != nil {
		t.Fatalf("unexpected error after Peek: %v", err)
	}
}

func TestNestedRequiresExactConsumption(t *testing.T) {
	// Outer SEQUENCE contains two INTEGERs but fn only reads one.
	r := NewReader([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02})
	err := Nested(r, Sequence, func(inner *Reader) error {
		_, err := PositiveInteger(inner)
		return err
	})
	if err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER for leftover bytes", err)
	}
}

func TestNestedSucceedsWhenFullyConsumed(t *testing.T) {
	r := NewReader([]byte{0x30, 0x03, 0x02, 0x01, 0x07})
	var got []byte
	err := Nested(r, Sequence, func(inner *Reader) error {
		v, err := PositiveInteger(inner)
		got = v
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v, want [7]", got)
	}
}

func TestReadOptionalTagAbsent(t *testing.T) {
	r := NewReader([]byte{0x02, 0x01, 0x01})
	v, present, err := ReadOptionalTag(r, ContextSpecificConstructed0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if present || v != nil {
		t.Fatal("expected tag to be reported absent")
	}
}

func TestReadOptionalTagPresent(t *testing.T) {
	r := NewReader([]byte{byte(ContextSpecificConstructed0), 0x01, 0xAA})
	v, present, err := ReadOptionalTag(r, ContextSpecificConstructed0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !present || len(v) != 1 || v[0] != 0xAA {
		t.Fatalf("got %v %v, want present with [0xAA]", v, present)
	}
}

func TestBooleanRejectsNonCanonicalEncoding(t *testing.T) {
	r := NewReader([]byte{0x01, 0x01, 0x01})
	if _, err := Boolean(r); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER for non-canonical TRUE", err)
	}
}

func TestBooleanWithDefaultUsesDefaultWhenAbsent(t *testing.T) {
	r := NewReader([]byte{0x02, 0x01, 0x01})
	v, err := BooleanWithDefault(r, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected default value true")
	}
}

func TestPositiveIntegerStripsLeadingZero(t *testing.T) {
	r := NewReader([]byte{0x02, 0x02, 0x00, 0x80})
	v, err := PositiveInteger(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 1 || v[0] != 0x80 {
		t.Fatalf("got %v, want [0x80]", v)
	}
}

func TestPositiveIntegerRejectsNegative(t *testing.T) {
	r := NewReader([]byte{0x02, 0x01, 0x80})
	if _, err := PositiveInteger(r); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestIntegerPreservesSerialNumberBytesExactly(t *testing.T) {
	r := NewReader([]byte{0x02, 0x03, 0x01, 0x02, 0x03})
	v, err := Integer(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 3 || v[0] != 0x01 || v[1] != 0x02 || v[2] != 0x03 {
		t.Fatalf("got %v, want [1 2 3]", v)
	}
}

func TestBitStringNoUnusedBitsRejectsNonZeroUnusedBits(t *testing.T) {
	r := NewReader([]byte{0x03, 0x02, 0x01, 0xF0})
	if _, err := BitStringNoUnusedBits(r); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestBitStringNoUnusedBitsReturnsContent(t *testing.T) {
	r := NewReader([]byte{0x03, 0x03, 0x00, 0xAB, 0xCD})
	v, err := BitStringNoUnusedBits(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 2 || v[0] != 0xAB || v[1] != 0xCD {
		t.Fatalf("got %v, want [0xAB 0xCD]", v)
	}
}

func TestExpectTagAndGetValueLimitedRejectsOversizedTLV(t *testing.T) {
	r := NewReader([]byte{0x04, 0x05, 1, 2, 3, 4, 5})
	if _, err := r.ExpectTagAndGetValueLimited(OctetStringTag, 3); err != ErrBadDER {
		t.Fatalf("got %v, want ErrBadDER", err)
	}
}

func TestReadPartialReturnsRawConsumedSlice(t *testing.T) {
	input := []byte{0x02, 0x01, 0x09, 0xFF}
	r := NewReader(input)
	raw, v, err := ReadPartial(r, PositiveInteger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("got raw length %d, want 3", len(raw))
	}
	if len(v) != 1 || v[0] != 9 {
		t.Fatalf("got %v, want [9]", v)
	}
	// One byte should remain unconsumed in the outer reader.
	if r.AtEnd() {
		t.Fatal("expected trailing byte to remain")
	}
}
