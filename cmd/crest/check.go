package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"crest/internal/ir"
)

var checkCmd = &cobra.Command{
	Use:   "check <snapshot>...",
	Short: "Validate the structural invariants of snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(_ *cobra.Command, args []string) error {
	var g errgroup.Group
	for _, path := range args {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			p, err := ir.DecodeSnapshot(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := ir.Validate(p); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("ok: %d snapshot(s)\n", len(args))
	return nil
}
