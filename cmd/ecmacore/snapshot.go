package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecmacore/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect heap snapshots",
}

var snapshotDumpCmd = &cobra.Command{
	Use:   "dump file.mp",
	Short: "Print a heap snapshot as sorted text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshot.Read(args[0])
		if err != nil {
			return err
		}
		verify, _ := cmd.Flags().GetBool("verify")
		if verify {
			if _, err := snapshot.Restore(snap, len(snap.Objects)); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
		}
		return snapshot.Dump(cmd.OutOrStdout(), snap)
	},
}

func init() {
	snapshotDumpCmd.Flags().Bool("verify", false, "rebuild the heap to check the snapshot is consistent")
	snapshotCmd.AddCommand(snapshotDumpCmd)
}
