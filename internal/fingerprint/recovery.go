package fingerprint

import "github.com/zsy-dream/aigcguard/internal/blocks"

// Recovery is the result of an adaptive extraction attempt.
type Recovery struct {
	Fingerprint string
	Strength    int
	StepUsed    float64
}

// Recover extracts with the primary quantization step and, when the signal
// is weaker than minStrength, retries with each ladder step
// (most-recent-first), keeping the strongest result seen. The ladder exists
// because the corpus may hold marks embedded before a step upgrade, with no
// record of which step was used.
//
// The step is threaded through stateless Extract calls; nothing on the
// engine is mutated, so concurrent detections sharing one engine never race.
func (e *Engine) Recover(plane blocks.Plane, length int, primary float64, ladder []float64, minStrength int) Recovery {
	best := Recovery{
		Fingerprint: e.Extract(plane, length, primary),
		StepUsed:    primary,
	}
	best.Strength = Strength(best.Fingerprint)
	if best.Strength >= minStrength {
		return best
	}

	for _, q := range ladder {
		if q <= 0 || q == primary {
			continue
		}
		fp := e.Extract(plane, length, q)
		if s := Strength(fp); s > best.Strength {
			best = Recovery{Fingerprint: fp, Strength: s, StepUsed: q}
		}
	}
	return best
}
