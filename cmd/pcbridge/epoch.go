package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eigerco/pcbridge/internal/mcepoch"
)

func newEpochCmd(a *app) *cobra.Command {
	epochCmd := &cobra.Command{
		Use:   "epoch",
		Short: "Mainchain epoch and slot arithmetic",
	}

	atCmd := &cobra.Command{
		Use:   "at TIMESTAMP_MILLIS",
		Short: "Print the mainchain epoch and slot containing a timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			ts := mcepoch.Timestamp(v)
			epoch, err := a.cfg.Mainchain.TimestampToEpoch(ts)
			if err != nil {
				return err
			}
			slot, err := a.cfg.Mainchain.TimestampToSlot(ts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "epoch %d slot %d\n", epoch, slot)
			return nil
		},
	}

	startCmd := &cobra.Command{
		Use:   "start EPOCH",
		Short: "Print the first timestamp and slot of an epoch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return err
			}
			epoch := mcepoch.Epoch(v)
			slot, err := a.cfg.Mainchain.FirstSlotOfEpoch(epoch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "timestamp %d slot %d\n", a.cfg.Mainchain.EpochToTimestamp(epoch), slot)
			return nil
		},
	}

	slotCmd := &cobra.Command{
		Use:   "of-slot SLOT",
		Short: "Print the epoch containing a mainchain slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			epoch, err := a.cfg.Mainchain.EpochForSlot(mcepoch.Slot(v))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "epoch %d\n", epoch)
			return nil
		},
	}

	epochCmd.AddCommand(atCmd, startCmd, slotCmd)
	return epochCmd
}
