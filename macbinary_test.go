// macbinary_test.go - the CRC property. There's no literal fixed
// sample header to check against, so this constructs a self-consistent
// header via the same function under test and checks
// isMacBinary/macBinaryResourceForkLength agree with it.

package main

import "testing"

func buildMacBinaryHeader(rsrcLength uint32) []byte {
	h := make([]byte, macBinaryHeaderSize)
	h[83] = byte(rsrcLength >> 24)
	h[84] = byte(rsrcLength >> 16)
	h[85] = byte(rsrcLength >> 8)
	h[86] = byte(rsrcLength)
	crc := crc16XModem(h[:124])
	h[124] = byte(crc >> 8)
	h[125] = byte(crc)
	return h
}

func TestMacBinaryCRCRoundTrip(t *testing.T) {
	h := buildMacBinaryHeader(4096)
	if !isMacBinary(h) {
		t.Fatal("isMacBinary false for a header built with its own valid checksum")
	}
	if got := macBinaryResourceForkLength(h); got != 4096 {
		t.Fatalf("macBinaryResourceForkLength = %d, want 4096", got)
	}
}

func TestMacBinaryRejectsCorruptedChecksum(t *testing.T) {
	h := buildMacBinaryHeader(4096)
	h[125] ^= 0xFF
	if isMacBinary(h) {
		t.Fatal("isMacBinary true after flipping the stored checksum's low byte")
	}
}

func TestMacBinaryRejectsNonZeroSentinelBytes(t *testing.T) {
	h := buildMacBinaryHeader(256)
	h[74] = 1
	if isMacBinary(h) {
		t.Fatal("isMacBinary true with a non-zero byte 74")
	}
}

func TestMacBinaryRejectsShortHeader(t *testing.T) {
	if isMacBinary(make([]byte, 10)) {
		t.Fatal("isMacBinary true for a header shorter than 128 bytes")
	}
}
