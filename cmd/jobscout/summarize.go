package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/client"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/observability"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a job listing, posting text or posting URL",
	Long:  "Request a summary from a running server. Progress goes to stderr and the final summary to stdout as JSON.",
	RunE:  runSummarize,
}

var (
	summarizeListing  string
	summarizeTextFile string
	summarizeURL      string
	summarizeForce    bool
)

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeListing, "listing", "l", "", "Listing ID")
	summarizeCmd.Flags().StringVarP(&summarizeTextFile, "text-file", "t", "", "File holding posting text, - for stdin")
	summarizeCmd.Flags().StringVarP(&summarizeURL, "url", "u", "", "Posting URL")
	summarizeCmd.Flags().BoolVar(&summarizeForce, "force", false, "Regenerate even when a cached summary exists")
	summarizeCmd.MarkFlagsMutuallyExclusive("listing", "text-file", "url")
	summarizeCmd.MarkFlagsOneRequired("listing", "text-file", "url")
	addClientFlags(summarizeCmd)

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	req := ingestion.GenerationRequest{
		ListingID:       summarizeListing,
		URL:             summarizeURL,
		ForceRegenerate: summarizeForce,
	}
	if summarizeTextFile != "" {
		text, err := readText(cmd.InOrStdin(), summarizeTextFile)
		if err != nil {
			return err
		}
		req.Text = text
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	return summarize(commandContext(cmd), c, req, pretty, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func summarize(ctx context.Context, c *client.Client, req ingestion.GenerationRequest, human bool, stdout, stderr io.Writer) error {
	p := &progress{w: stderr}
	summary, err := c.StreamSummary(ctx, req, func(s insights.Summary) {
		p.update(s.TLDR)
	})
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	if human {
		observability.NewPrinter(stdout).PrintSummary(&summary.GeneratedSummary)
		return nil
	}
	return printJSON(stdout, summary)
}

func readText(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read posting text: %w", err)
	}
	return string(data), nil
}
