// Package sampler draws token ids from probability distributions.
package sampler

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrEmptyDistribution is returned for a zero-length probability row.
	ErrEmptyDistribution = errors.New("sampler: empty distribution")
	// ErrInvalidDistribution is returned when the cumulative mass never
	// reaches the uniform sample, which happens when the row holds NaNs.
	ErrInvalidDistribution = errors.New("sampler: distribution does not sum to one")
)

// topPOne is the threshold above which top-p is treated as disabled.
const topPOne = 1.0 - 1e-5

type candidate struct {
	prob float32
	id   int
}

// SampleTopP samples an index from prob restricted to the smallest prefix of
// the descending-sorted distribution whose mass reaches topP. uniform must lie
// in [0, 1). It returns the probability of the sampled index renormalized
// within the kept set, and the index.
//
// topP == 0 degenerates to argmax and reports probability 1.
func SampleTopP(prob []float32, topP, uniform float64) (float32, int, error) {
	if len(prob) == 0 {
		return 0, -1, ErrEmptyDistribution
	}
	if topP == 0 {
		return 1, Argmax(prob), nil
	}
	if topP >= topPOne {
		var sum float64
		for i, p := range prob {
			sum += float64(p)
			if sum >= uniform {
				return p, i, nil
			}
		}
		return 0, -1, ErrInvalidDistribution
	}

	// Most of the mass usually sits in a few entries, so try a cheap cutoff
	// first and fall back to the full row only when it cannot cover topP.
	if p, id, ok := sampleWithCutoff(prob, topP, uniform, float32(topP/1024)); ok {
		return p, id, nil
	}
	if p, id, ok := sampleWithCutoff(prob, topP, uniform, 0); ok {
		return p, id, nil
	}
	return 0, -1, ErrInvalidDistribution
}

func sampleWithCutoff(prob []float32, topP, uniform float64, cutoff float32) (float32, int, bool) {
	data := make([]candidate, 0, 256)
	var cutoffSum float32
	for i, p := range prob {
		if p < cutoff {
			continue
		}
		cutoffSum += p
		data = append(data, candidate{prob: p, id: i})
		if cutoffSum > 1-cutoff {
			break
		}
	}
	if len(data) == 0 {
		return 0, -1, false
	}
	sort.SliceStable(data, func(i, j int) bool { return data[i].prob > data[j].prob })

	if uniform < float64(data[0].prob)/topP {
		return data[0].prob, data[0].id, true
	}

	// Rewrite probabilities into a running sum up to the topP boundary.
	var cum, topPSum float32
	kept := 0
	for i := range data {
		if float64(cum) >= topP {
			break
		}
		topPSum += data[i].prob
		cum += data[i].prob
		data[i].prob = cum
		kept = i + 1
	}
	if float64(cum) < topP && cutoff != 0 {
		return 0, -1, false
	}
	data = data[:kept]

	var last float32
	for _, c := range data {
		if uniform < float64(c.prob/topPSum) {
			return c.prob - last, c.id, true
		}
		last = c.prob
	}
	tail := data[len(data)-1]
	return tail.prob - last, tail.id, true
}

// Argmax returns the index of the largest entry, or -1 when all entries are
// non-positive.
func Argmax(prob []float32) int {
	best := -1
	var max float32
	for i, p := range prob {
		if p > max {
			max = p
			best = i
		}
	}
	return best
}

// Softmax converts logits into probabilities. A temperature <= 0 is treated
// as 1.
func Softmax(logits []float32, temperature float64) []float32 {
	if len(logits) == 0 {
		return nil
	}
	if temperature <= 0 {
		temperature = 1
	}
	max := math.Inf(-1)
	for _, l := range logits {
		if v := float64(l) / temperature; v > max {
			max = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, l := range logits {
		e := math.Exp(float64(l)/temperature - max)
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
