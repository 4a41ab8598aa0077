package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/internal/stableblock"
	"github.com/eigerco/pcbridge/pkg/log"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-blocks FILE",
		Short: "Import mainchain blocks from a JSON array into the block store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := loadBlocks(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			bs, err := openBlockStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer bs.Close()

			if err := bs.PutBlocks(ctx, blocks...); err != nil {
				return err
			}
			log.Root.Info().Int("blocks", len(blocks)).Str("source", a.cfg.BlockSource).Msg("imported mainchain blocks")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d blocks\n", len(blocks))
			return nil
		},
	}
}

func loadBlocks(path string) ([]block.MainchainBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	var blocks []block.MainchainBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	return blocks, nil
}

func newLatestCmd(a *app) *cobra.Command {
	var at uint64
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the mainchain tip and the latest stable block for a timestamp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := a.cfg.SourceConfig()
			if err != nil {
				return err
			}
			bs, err := openBlockStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer bs.Close()

			src := stableblock.NewSource(bs, sc)
			out := cmd.OutOrStdout()
			tip, ok, err := src.LatestBlock(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "no blocks")
				return nil
			}
			fmt.Fprintf(out, "latest: %s\n", tip)

			ref := mcepoch.Timestamp(at)
			if at == 0 {
				ref = tip.TimestampMillis()
			}
			stable, ok, err := src.GetLatestStableBlockFor(ctx, ref)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "stable: none for %d\n", ref)
				return nil
			}
			fmt.Fprintf(out, "stable: %s\n", stable)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&at, "at", 0, "Reference timestamp in milliseconds, defaults to the tip timestamp")
	return cmd
}
