package fingerprint

import "strings"

// FingerprintBits is the full fingerprint length: 64 hex characters.
const FingerprintBits = 256

var (
	hexToNibble [128]int8
	nibbleToHex = "0123456789abcdef"
)

func init() {
	for i := range hexToNibble {
		hexToNibble[i] = -1
	}
	for i, c := range "0123456789abcdef" {
		hexToNibble[c] = int8(i)
	}
	for i, c := range "ABCDEF" {
		hexToNibble[c] = int8(10 + i)
	}
}

// HexToBinary expands a hex string into its "0"/"1" representation, four
// bits per character. Characters outside [0-9a-fA-F] are skipped.
func HexToBinary(hex string) string {
	var b strings.Builder
	b.Grow(len(hex) * 4)
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		if c >= 128 || hexToNibble[c] < 0 {
			continue
		}
		n := byte(hexToNibble[c])
		b.WriteByte('0' + (n>>3)&1)
		b.WriteByte('0' + (n>>2)&1)
		b.WriteByte('0' + (n>>1)&1)
		b.WriteByte('0' + n&1)
	}
	return b.String()
}

// BinaryToHex packs a "0"/"1" string into lowercase hex, four bits per
// character. A trailing group of fewer than four bits is dropped.
func BinaryToHex(binary string) string {
	var b strings.Builder
	b.Grow(len(binary) / 4)
	for i := 0; i+4 <= len(binary); i += 4 {
		var n byte
		for j := 0; j < 4; j++ {
			n <<= 1
			if binary[i+j] == '1' {
				n |= 1
			}
		}
		b.WriteByte(nibbleToHex[n])
	}
	return b.String()
}

// bitsFromHex converts a hex fingerprint into a bit slice of exactly length
// bits, zero-padded on the right.
func bitsFromHex(hex string, length int) []uint8 {
	bits := make([]uint8, length)
	k := 0
	for i := 0; i < len(hex) && k < length; i++ {
		c := hex[i]
		if c >= 128 || hexToNibble[c] < 0 {
			continue
		}
		n := hexToNibble[c]
		for shift := 3; shift >= 0 && k < length; shift-- {
			bits[k] = uint8((n >> shift) & 1)
			k++
		}
	}
	return bits
}

// Strength counts the non-zero hex characters of an extracted fingerprint.
// Unmarked natural images concentrate near-zero mid-frequency coefficients,
// so their extractions are mostly zeros; a genuine embedded fingerprint is
// hash-derived and almost entirely non-zero.
func Strength(hex string) int {
	n := 0
	for i := 0; i < len(hex); i++ {
		if hex[i] != '0' {
			n++
		}
	}
	return n
}

// Similarity returns the fraction of matching bits between an extracted and
// a reference fingerprint, compared over the shorter of the two binary
// expansions. It returns 0 when either input is empty or the reference has
// fewer than 8 hex characters, which is too little signal to compare.
func Similarity(extracted, reference string) float64 {
	if extracted == "" || reference == "" || len(reference) < 8 {
		return 0
	}
	a := HexToBinary(extracted)
	b := HexToBinary(reference)
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(n)
}
