package textmark

import (
	"strings"
	"testing"
)

func TestEmbedExtractRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		carrier string
		payload string
	}{
		{"ascii payload", "The quick brown fox jumps over the lazy dog.", "12345678"},
		{"hex fingerprint", "一段被保护的中文内容，可能会被整段复制。", "a7c3e5f91b2d4a6c"},
		{"single char carrier", "x", "id-42"},
		{"utf8 payload", "Plain carrier text.", "所有者#9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			marked := Embed(tc.carrier, tc.payload)
			got, status := Extract(marked)
			if status != StatusFound {
				t.Fatalf("status = %v, want found", status)
			}
			if got != tc.payload {
				t.Fatalf("payload = %q, want %q", got, tc.payload)
			}
		})
	}
}

func TestEmbedIsInvisible(t *testing.T) {
	carrier := "Visible text stays byte-identical once markers are stripped."
	marked := Embed(carrier, "payload")

	if marked == carrier {
		t.Fatal("embed did not modify the text")
	}
	if Strip(marked) != carrier {
		t.Fatalf("stripped text %q differs from carrier", Strip(marked))
	}
}

func TestEmbedEmptyCarrier(t *testing.T) {
	if got := Embed("", "payload"); got != "" {
		t.Fatalf("empty carrier produced %q", got)
	}
}

func TestExtractSentinels(t *testing.T) {
	if _, status := Extract("plain text with no markers"); status != StatusNoWatermark {
		t.Fatalf("status = %v, want no watermark", status)
	}

	marked := Embed("some carrier text", "owner-7")
	// Truncating past the opening boundary leaves a dangling marker.
	// Bit markers are 3 bytes each; cut on a marker edge.
	cut := strings.IndexRune(marked, boundary) + len(string(boundary)) + 6
	if _, status := Extract(marked[:cut]); status != StatusCorrupted {
		t.Fatalf("status = %v, want corrupted", status)
	}
}

func TestExtractEmptyPayload(t *testing.T) {
	marked := Embed("carrier", "")
	got, status := Extract(marked)
	if status != StatusFound || got != "" {
		t.Fatalf("got %q / %v, want empty payload found", got, status)
	}
}

func TestExtractSkipsForeignCharacters(t *testing.T) {
	marked := Embed("carrier text", "ok")
	// Simulate an editor inserting a visible character inside the run,
	// on a marker edge (bit markers are 3 bytes each).
	at := strings.IndexRune(marked, boundary) + len(string(boundary)) + 9
	damaged := marked[:at] + " " + marked[at:]

	got, status := Extract(damaged)
	if status != StatusFound {
		t.Fatalf("status = %v, want found", status)
	}
	if got != "ok" {
		t.Fatalf("payload = %q, want ok", got)
	}
}

func TestStatusStrings(t *testing.T) {
	if StatusFound.String() != "found" ||
		StatusNoWatermark.String() != "no watermark" ||
		StatusCorrupted.String() != "corrupted watermark" {
		t.Fatal("unexpected status labels")
	}
}
