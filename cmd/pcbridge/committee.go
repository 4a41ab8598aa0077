package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/eigerco/pcbridge/internal/committee"
)

var errNoCommittee = errors.New("no committee could be selected")

// maxWeightBits bounds candidate weights to the u128 range.
const maxWeightBits = 128

type candidateJSON struct {
	ID     string `json:"id"`
	Weight string `json:"weight"` // decimal
}

// snapshotJSON is the candidate snapshot of one partner chain epoch.
type snapshotJSON struct {
	DParameter   committee.DParameter `json:"d_parameter"`
	EpochNonce   string               `json:"epoch_nonce"` // hex
	Registered   []candidateJSON      `json:"registered"`
	Permissioned []string             `json:"permissioned"`
}

func (s snapshotJSON) inputs() (committee.Inputs[string], error) {
	nonce, err := hex.DecodeString(strings.TrimPrefix(s.EpochNonce, "0x"))
	if err != nil {
		return committee.Inputs[string]{}, fmt.Errorf("decode epoch nonce: %w", err)
	}
	registered := make([]committee.WeightedCandidate[string], 0, len(s.Registered))
	for _, c := range s.Registered {
		w, err := uint256.FromDecimal(c.Weight)
		if err != nil {
			return committee.Inputs[string]{}, fmt.Errorf("candidate %s weight %q: %w", c.ID, c.Weight, err)
		}
		if w.BitLen() > maxWeightBits {
			return committee.Inputs[string]{}, fmt.Errorf("candidate %s weight %s exceeds %d bits", c.ID, c.Weight, maxWeightBits)
		}
		registered = append(registered, committee.WeightedCandidate[string]{ID: c.ID, Weight: *w})
	}
	return committee.Inputs[string]{
		DParameter:   s.DParameter,
		EpochNonce:   nonce,
		Registered:   registered,
		Permissioned: s.Permissioned,
	}, nil
}

func loadSnapshot(path string) (snapshotJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshotJSON{}, fmt.Errorf("error reading file: %w", err)
	}
	var s snapshotJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return snapshotJSON{}, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	return s, nil
}

func newCommitteeCmd(_ *app) *cobra.Command {
	var epoch uint64
	cmd := &cobra.Command{
		Use:   "committee SNAPSHOT_FILE",
		Short: "Select the committee of a partner chain epoch from a candidate snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			in, err := snapshot.inputs()
			if err != nil {
				return err
			}
			members, ok := committee.SelectForEpoch(in, epoch)
			if !ok {
				return errNoCommittee
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(members)
		},
	}
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "Partner chain epoch number")
	_ = cmd.MarkFlagRequired("epoch")
	return cmd
}
