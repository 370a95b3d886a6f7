// Package textmark hides watermark payloads in plain text using
// zero-width characters. It is independent of the DCT pipeline and
// survives copy-paste of the visible text.
package textmark

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Zero-width code points. Two encode the bit stream, the third brackets
// it so extraction can find the payload inside arbitrary text.
const (
	zeroBit  = '\u200b' // zero-width space
	oneBit   = '\u200c' // zero-width non-joiner
	boundary = '\u200d' // zero-width joiner
)

// Status classifies an extraction outcome.
type Status int

const (
	// StatusFound means a complete payload was decoded.
	StatusFound Status = iota
	// StatusNoWatermark means no boundary marker exists in the text.
	StatusNoWatermark
	// StatusCorrupted means an opening boundary was found without its
	// closing pair, typically after the text was truncated.
	StatusCorrupted
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoWatermark:
		return "no watermark"
	case StatusCorrupted:
		return "corrupted watermark"
	default:
		return "unknown"
	}
}

// Embed inserts the payload invisibly after the first visible character,
// so the mark survives truncation of either end of the text. The carrier
// is NFC-normalized first; composition applied later by other tooling
// would otherwise shift the marker positions. An empty carrier is
// returned unchanged since there is nothing to hide the payload in.
func Embed(text, payload string) string {
	if text == "" {
		return text
	}
	text = norm.NFC.String(text)

	var hidden strings.Builder
	hidden.WriteRune(boundary)
	for _, b := range []byte(payload) {
		for bit := 7; bit >= 0; bit-- {
			if b>>uint(bit)&1 == 1 {
				hidden.WriteRune(oneBit)
			} else {
				hidden.WriteRune(zeroBit)
			}
		}
	}
	hidden.WriteRune(boundary)

	runes := []rune(text)
	cut := 1
	if len(runes) < cut {
		cut = len(runes)
	}
	return string(runes[:cut]) + hidden.String() + string(runes[cut:])
}

// Extract decodes the payload between the first pair of boundary markers.
// Characters that are neither bit marker are skipped, so incidental
// formatting characters inside the run do not break decoding.
func Extract(text string) (string, Status) {
	start := strings.IndexRune(text, boundary)
	if start == -1 {
		return "", StatusNoWatermark
	}
	rest := text[start+len(string(boundary)):]
	end := strings.IndexRune(rest, boundary)
	if end == -1 {
		return "", StatusCorrupted
	}

	var payload []byte
	var current byte
	bits := 0
	for _, r := range rest[:end] {
		switch r {
		case zeroBit:
			current <<= 1
		case oneBit:
			current = current<<1 | 1
		default:
			continue
		}
		bits++
		if bits == 8 {
			payload = append(payload, current)
			current, bits = 0, 0
		}
	}
	// Trailing bits short of a byte are dropped.
	return string(payload), StatusFound
}

// Strip removes every zero-width marker, reproducing the visible text.
func Strip(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case zeroBit, oneBit, boundary:
			return -1
		}
		return r
	}, text)
}
