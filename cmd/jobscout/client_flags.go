package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/client"
)

var (
	serverURL    string
	accessToken  string
	refreshToken string
	pretty       bool
)

// addClientFlags registers the connection flags shared by client commands.
// Each defaults to an environment variable so tokens stay off the command line.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverURL, "server", envOr("JOBSCOUT_URL", "http://localhost:8080"), "API base URL (JOBSCOUT_URL)")
	cmd.Flags().StringVar(&accessToken, "token", os.Getenv("JOBSCOUT_TOKEN"), "Access token (JOBSCOUT_TOKEN)")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", os.Getenv("JOBSCOUT_REFRESH_TOKEN"), "Refresh token (JOBSCOUT_REFRESH_TOKEN)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Print a human-readable box instead of JSON")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newAPIClient() (*client.Client, error) {
	if accessToken == "" && refreshToken == "" {
		return nil, fmt.Errorf("--token or --refresh-token is required")
	}
	return client.New(client.Options{
		BaseURL:      serverURL,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Logger:       newLogger(verbose),
	}), nil
}

// progress prints a one-line preview to w whenever it changes.
type progress struct {
	w    io.Writer
	last string
}

func (p *progress) update(text string) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || text == p.last {
		return
	}
	p.last = text
	if len([]rune(text)) > 100 {
		text = string([]rune(text)[:100]) + "..."
	}
	fmt.Fprintf(p.w, "... %s\n", text)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
