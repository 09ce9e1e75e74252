package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/client"
	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/observability"
)

var compareCmd = &cobra.Command{
	Use:   "compare LISTING_ID LISTING_ID [LISTING_ID]",
	Short: "Compare two or three job listings",
	Long:  "Request a side-by-side comparison from a running server. Progress goes to stderr and the final comparison to stdout as JSON.",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runCompare,
}

var compareForce bool

func init() {
	compareCmd.Flags().BoolVar(&compareForce, "force", false, "Regenerate even when a cached comparison exists")
	addClientFlags(compareCmd)

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}
	req := insights.CompareRequest{ListingIDs: args, ForceRegenerate: compareForce}
	return compare(commandContext(cmd), c, req, pretty, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func compare(ctx context.Context, c *client.Client, req insights.CompareRequest, human bool, stdout, stderr io.Writer) error {
	p := &progress{w: stderr}
	comparison, err := c.StreamCompare(ctx, req, func(cmp insights.Comparison) {
		p.update(cmp.Summary)
	})
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	if human {
		observability.NewPrinter(stdout).PrintComparison(&comparison.GeneratedComparison)
		return nil
	}
	return printJSON(stdout, comparison)
}
