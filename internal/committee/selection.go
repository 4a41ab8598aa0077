package committee

import (
	"github.com/holiman/uint256"
)

// WeightedCandidate is a candidate with its selection weight. Weights are
// expected to fit in 128 bits.
type WeightedCandidate[T any] struct {
	ID     T
	Weight uint256.Int
}

// Weighted pairs id with an integer weight.
func Weighted[T any](id T, weight uint64) WeightedCandidate[T] {
	return WeightedCandidate[T]{ID: id, Weight: *uint256.NewInt(weight)}
}

// SelectAuthorities selects a committee of registeredSeats+permissionedSeats
// members. When both pools are non-empty the registered pool fills exactly
// registeredSeats and the permissioned pool, where every candidate weighs 1,
// fills permissionedSeats. When one pool is empty the other fills every
// seat. Every candidate i gets at least floor(w_i/W*n) seats of its pool.
//
// The result is false when seats are requested but none could be filled.
func SelectAuthorities[T any](
	registeredSeats, permissionedSeats uint16,
	registered []WeightedCandidate[T],
	permissioned []T,
	seed [SeedSize]byte,
) ([]T, bool) {
	seatsTotal := uint32(registeredSeats) + uint32(permissionedSeats)
	rng := NewChaChaRNG(seed)

	permissionedWeighted := make([]WeightedCandidate[T], len(permissioned))
	for i, id := range permissioned {
		permissionedWeighted[i] = Weighted(id, 1)
	}

	var selected []T
	switch {
	case len(registered) > 0 && len(permissioned) > 0:
		selected = weightedWithGuaranteedAssignment(registered, uint32(registeredSeats), rng)
		selected = append(selected, weightedWithGuaranteedAssignment(permissionedWeighted, uint32(permissionedSeats), rng)...)
	case len(registered) == 0:
		selected = weightedWithGuaranteedAssignment(permissionedWeighted, seatsTotal, rng)
	default:
		selected = weightedWithGuaranteedAssignment(registered, seatsTotal, rng)
	}

	Shuffle(rng, selected)
	if len(selected) == 0 && seatsTotal > 0 {
		return nil, false
	}
	if selected == nil {
		selected = []T{}
	}
	return selected, true
}

// WeightedWithGuaranteedAssignment draws n seats from candidates with
// repetition. A candidate expecting P+Q seats, P integral and Q in [0, 1),
// is given P seats outright and competes for the rest with weight Q.
func WeightedWithGuaranteedAssignment[T any](candidates []WeightedCandidate[T], n uint32, seed [SeedSize]byte) []T {
	return weightedWithGuaranteedAssignment(candidates, n, NewChaChaRNG(seed))
}

func weightedWithGuaranteedAssignment[T any](candidates []WeightedCandidate[T], n uint32, rng *ChaChaRNG) []T {
	if len(candidates) == 0 || n == 0 {
		return nil
	}
	selected, remaining := selectGuaranteed(candidates, n)
	rest, _ := selectWeightedRandom(remaining, n-uint32(len(selected)), rng)
	return append(selected, rest...)
}

// selectGuaranteed hands out the integral part of every candidate's
// expected seat count and returns the fractional parts, scaled by the total
// weight, as the weights of the remaining draw.
func selectGuaranteed[T any](candidates []WeightedCandidate[T], n uint32) (selected []T, remaining []WeightedCandidate[T]) {
	threshold := totalWeight(candidates)
	if threshold.IsZero() {
		return nil, nil
	}
	scale := uint256.NewInt(uint64(n))
	for _, c := range candidates {
		if c.Weight.IsZero() {
			continue
		}
		var scaled, guaranteed, rem uint256.Int
		scaled.Mul(&c.Weight, scale)
		guaranteed.DivMod(&scaled, threshold, &rem)
		for i := uint64(0); i < guaranteed.Uint64(); i++ {
			selected = append(selected, c.ID)
		}
		if !rem.IsZero() {
			remaining = append(remaining, WeightedCandidate[T]{ID: c.ID, Weight: rem})
		}
	}
	return selected, remaining
}

// SelectWeightedRandom draws size seats with repetition, giving each seat
// to candidate k with probability w_k/W. The result is false when seats are
// requested from candidates of zero total weight.
func SelectWeightedRandom[T any](candidates []WeightedCandidate[T], size uint32, seed [SeedSize]byte) ([]T, bool) {
	return selectWeightedRandom(candidates, size, NewChaChaRNG(seed))
}

func selectWeightedRandom[T any](candidates []WeightedCandidate[T], size uint32, rng *ChaChaRNG) ([]T, bool) {
	if size == 0 {
		return nil, true
	}
	total := totalWeight(candidates)
	if total.IsZero() {
		return nil, false
	}
	selected := make([]T, 0, size)
	for uint32(len(selected)) < size {
		selected = append(selected, candidates[pickIndex(candidates, total, rng)].ID)
	}
	return selected, true
}

// pickIndex returns the first candidate whose cumulative weight exceeds a
// uniform draw from [0, total).
func pickIndex[T any](candidates []WeightedCandidate[T], total *uint256.Int, rng *ChaChaRNG) int {
	r := rng.Uint256n(total)
	var cumulative uint256.Int
	for i := range candidates {
		cumulative.Add(&cumulative, &candidates[i].Weight)
		if cumulative.Gt(r) {
			return i
		}
	}
	// unreachable while total is the sum of the weights
	return len(candidates) - 1
}

func totalWeight[T any](candidates []WeightedCandidate[T]) *uint256.Int {
	total := new(uint256.Int)
	for i := range candidates {
		total.Add(total, &candidates[i].Weight)
	}
	return total
}
