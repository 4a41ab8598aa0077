package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/internal/mcreference"
	"github.com/eigerco/pcbridge/internal/stableblock"
	"github.com/eigerco/pcbridge/pkg/metrics"
)

func newReferenceCmd(a *app) *cobra.Command {
	refCmd := &cobra.Command{
		Use:   "reference",
		Short: "Propose and verify the mainchain reference of partner chain blocks",
	}
	refCmd.AddCommand(newGenesisCmd(a), newProposeCmd(a), newVerifyCmd(a))
	return refCmd
}

// dataSource wraps the stable block source of st with metrics.
func (a *app) dataSource(st *storage, reg prometheus.Registerer) (mcreference.DataSource, error) {
	sc, err := a.cfg.SourceConfig()
	if err != nil {
		return nil, err
	}
	m, err := metrics.NewDataSource(reg)
	if err != nil {
		return nil, err
	}
	return mcreference.NewObserved(stableblock.NewSource(st.blocks, sc), m), nil
}

func newGenesisCmd(a *app) *cobra.Command {
	var stateRoot string
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Store a partner chain genesis header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genesis := block.Header{}
			if stateRoot != "" {
				root, err := crypto.ParseHash(stateRoot)
				if err != nil {
					return err
				}
				genesis.StateRoot = root
			}
			st, err := openStorage(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			hash, err := st.headers.PutHeader(genesis)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genesis %s\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&stateRoot, "state-root", "", "Genesis state root, hex encoded")
	return cmd
}

func newProposeCmd(a *app) *cobra.Command {
	var (
		parentHash string
		slot       uint64
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Select the mainchain reference for a new block and store its header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ph, err := crypto.ParseHash(parentHash)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := openStorage(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			parent, err := st.headers.GetHeader(ph)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			ds, err := a.dataSource(st, reg)
			if err != nil {
				return err
			}
			ps := mcepoch.PartnerSlot(slot)
			ref, err := mcreference.NewProposal(ctx, ds, parent, ps, a.cfg.PartnerSlotDuration())
			if err != nil {
				return err
			}

			child := block.Header{
				ParentHash: ph,
				Number:     parent.Number + 1,
				Digest:     block.Digest{block.NewSlotDigest(ps), ref.DigestItem()},
			}
			hash, err := st.headers.PutHeader(child)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "header %s number %d\n", hash, child.Number)
			printReference(out, ref)
			return a.writeMetrics(out, reg)
		},
	}
	cmd.Flags().StringVar(&parentHash, "parent", "", "Hash of the parent header")
	cmd.Flags().Uint64Var(&slot, "slot", 0, "Partner chain slot of the new block")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var (
		headerHash string
		mcHash     string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the mainchain reference of a stored header against its parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hh, err := crypto.ParseHash(headerHash)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := openStorage(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			header, err := st.headers.GetHeader(hh)
			if err != nil {
				return err
			}
			slot, ok, err := header.Slot()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("header %s announces no slot", hh)
			}
			claimed, err := claimedReference(header, mcHash)
			if err != nil {
				return err
			}
			parent, err := verifiedParent(st, header)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			ds, err := a.dataSource(st, reg)
			if err != nil {
				return err
			}
			ref, err := mcreference.NewVerification(ctx, ds, parent, slot, claimed, a.cfg.PartnerSlotDuration())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "valid reference for header %s\n", hh)
			printReference(out, ref)
			return a.writeMetrics(out, reg)
		},
	}
	cmd.Flags().StringVar(&headerHash, "header", "", "Hash of the header to verify")
	cmd.Flags().StringVar(&mcHash, "mc-hash", "", "Claimed mainchain hash, defaults to the one in the header digest")
	_ = cmd.MarkFlagRequired("header")
	return cmd
}

func claimedReference(header block.Header, override string) (crypto.Hash, error) {
	if override != "" {
		return crypto.ParseHash(override)
	}
	return block.McHashFromDigest(header.Digest)
}

func verifiedParent(st *storage, header block.Header) (mcreference.Parent, error) {
	parent, err := st.headers.GetParent(header)
	if err != nil {
		return nil, err
	}
	if parent.IsGenesis() {
		return mcreference.Genesis{}, nil
	}
	slot, ok, err := parent.Slot()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("parent of header %d announces no slot", header.Number)
	}
	return mcreference.ParentBlock{Header: parent, Slot: slot}, nil
}

func printReference(out io.Writer, ref *mcreference.Reference) {
	fmt.Fprintf(out, "mc_hash %s mc_block %d mc_epoch %d\n", ref.McHash(), ref.McBlockNumber(), ref.McEpoch())
	if prev, ok := ref.PreviousMcHash(); ok {
		fmt.Fprintf(out, "previous_mc_hash %s\n", prev)
	}
}

func (a *app) writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	if !a.printMetrics {
		return nil
	}
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		return closer.Close()
	}
	return nil
}
