package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/config"
	"github.com/jonathan/jobscout/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access and refresh token for local use",
	Long:  "Sign an access/refresh token pair for a user ID with JWT_SECRET. Intended for development and scripting.",
	RunE:  runToken,
}

var tokenUserID string

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User ID (UUID) the tokens identify")
	_ = tokenCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(tokenCmd)
}

// TokenPair is printed by the token command.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	return mintTokens(server.NewJWTService(jwtConfig), tokenUserID, cmd.OutOrStdout())
}

func mintTokens(jwt *server.JWTService, rawUserID string, out io.Writer) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil || userID == uuid.Nil {
		return fmt.Errorf("invalid user ID %q", rawUserID)
	}
	access, err := jwt.GenerateToken(userID)
	if err != nil {
		return err
	}
	refresh, err := jwt.GenerateRefreshToken(userID)
	if err != nil {
		return err
	}
	return printJSON(out, TokenPair{Token: access, RefreshToken: refresh})
}
