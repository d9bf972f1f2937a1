package name

import (
	"testing"

	"github.com/japaric/webpki/wpkierror"
)

func TestNewIPAddressRejectsLeadingZero(t *testing.T) {
	if _, err := NewIPAddress("192.168.001.1"); err == nil {
		t.Fatal("expected error for leading-zero octet")
	}
}

func TestIPConstraintMatchesWithinMask(t *testing.T) {
	ip, err := NewIPAddress("10.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	constraint := append([]byte{10, 0, 0, 0}, []byte{255, 0, 0, 0}...)
	matched, err := ipPresentedMatchesConstraint(ip.Bytes(), constraint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matched {
		t.Fatal("expected address within masked subnet to match")
	}
}

func TestIPConstraintRejectsOutsideMask(t *testing.T) {
	ip, err := NewIPAddress("11.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	constraint := append([]byte{10, 0, 0, 0}, []byte{255, 0, 0, 0}...)
	matched, err := ipPresentedMatchesConstraint(ip.Bytes(), constraint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched {
		t.Fatal("expected address outside masked subnet to be rejected")
	}
}

func TestIPConstraintAcceptsPartialByteMask(t *testing.T) {
	ip, err := NewIPAddress("10.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// /12: 255.240.0.0.
	constraint := append([]byte{10, 0, 0, 0}, []byte{255, 240, 0, 0}...)
	matched, err := ipPresentedMatchesConstraint(ip.Bytes(), constraint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matched {
		t.Fatal("expected a valid partial-byte prefix mask to match")
	}
}

func TestIPConstraintRejectsNonContiguousMask(t *testing.T) {
	ip, err := NewIPAddress("10.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 255.0.255.0 is a 1-bit followed by a 0-bit followed by a 1-bit: not a
	// valid prefix mask.
	constraint := append([]byte{10, 0, 0, 0}, []byte{255, 0, 255, 0}...)
	matched, err := ipPresentedMatchesConstraint(ip.Bytes(), constraint)
	if err != wpkierror.NameConstraintViolation {
		t.Fatalf("got err %v, want NameConstraintViolation", err)
	}
	if matched {
		t.Fatal("a non-contiguous mask must never report a match")
	}
}

func TestIPConstraintRejectsNonContiguousPartialByte(t *testing.T) {
	ip, err := NewIPAddress("10.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0xAA (10101010) is not one of the eight valid partial-prefix bytes.
	constraint := append([]byte{10, 0, 0, 0}, []byte{255, 0xAA, 0, 0}...)
	_, err = ipPresentedMatchesConstraint(ip.Bytes(), constraint)
	if err != wpkierror.NameConstraintViolation {
		t.Fatalf("got err %v, want NameConstraintViolation", err)
	}
}

func TestIsContiguousMaskAcceptsAllFormsOfPrefix(t *testing.T) {
	valid := [][]byte{
		{0x00, 0x00, 0x00, 0x00},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xFF, 0x80, 0x00, 0x00},
		{0xFF, 0xFF, 0xFE, 0x00},
	}
	for _, mask := range valid {
		if !isContiguousMask(mask) {
			t.Fatalf("expected %v to be a valid contiguous mask", mask)
		}
	}
}

func TestIsContiguousMaskRejectsTrailingOneAfterZero(t *testing.T) {
	if isContiguousMask([]byte{0xFF, 0x00, 0x00, 0x01}) {
		t.Fatal("expected a 1 bit after a 0 bit to be rejected")
	}
}
