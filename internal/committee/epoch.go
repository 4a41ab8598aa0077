package committee

import (
	"github.com/eigerco/pcbridge/pkg/log"
)

// DParameter splits committee seats between registered and permissioned
// candidates.
type DParameter struct {
	RegisteredSeats   uint16 `json:"num_registered_candidates"`
	PermissionedSeats uint16 `json:"num_permissioned_candidates"`
}

// Inputs is the candidate snapshot a committee is selected from.
type Inputs[T any] struct {
	DParameter   DParameter
	EpochNonce   []byte
	Registered   []WeightedCandidate[T]
	Permissioned []T
}

// SelectForEpoch selects the committee of a partner chain epoch, seeding the
// draw with the epoch nonce and the epoch number.
func SelectForEpoch[T any](in Inputs[T], epoch uint64) ([]T, bool) {
	seed := SeedFromNonceAndEpoch(in.EpochNonce, epoch)
	committee, ok := SelectAuthorities(
		in.DParameter.RegisteredSeats,
		in.DParameter.PermissionedSeats,
		in.Registered,
		in.Permissioned,
		seed,
	)
	if !ok {
		log.Selection.Warn().Uint64("epoch", epoch).Msg("failed to select committee")
		return nil, false
	}
	log.Selection.Info().
		Int("seats", len(committee)).
		Uint64("epoch", epoch).
		Int("permissioned_candidates", len(in.Permissioned)).
		Int("registered_candidates", len(in.Registered)).
		Msg("selected committee")
	return committee, true
}
