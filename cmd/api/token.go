package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/vision-api/internal/auth"
	"github.com/redmonkez12/vision-api/internal/config"
)

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect tokens with the configured secret",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for a user",
		Args:  cobra.NoArgs,
		RunE:  runTokenIssue,
	}
	issueCmd.Flags().String("user-id", "", "User ID to embed in the token")
	issueCmd.Flags().String("email", "", "Email to embed in the token")
	_ = issueCmd.MarkFlagRequired("user-id")

	verifyCmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenVerify,
	}

	tokenCmd.AddCommand(issueCmd, verifyCmd)
	return tokenCmd
}

func loadTokenService() (auth.TokenService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return auth.NewTokenService(&cfg.Auth)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user-id")
	email, _ := cmd.Flags().GetString("email")

	tokens, err := loadTokenService()
	if err != nil {
		return err
	}

	token, err := tokens.GenerateToken(auth.Identity{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

type tokenInfo struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	IssuedAt  string `json:"issuedAt,omitempty"`
	ExpiresAt string `json:"expiresAt"`
}

func runTokenVerify(cmd *cobra.Command, args []string) error {
	tokens, err := loadTokenService()
	if err != nil {
		return err
	}

	claims, err := tokens.VerifyToken(args[0])
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return errors.New("token has expired")
		}
		return errors.New("token is invalid")
	}

	info := tokenInfo{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if !claims.IssuedAt.IsZero() {
		info.IssuedAt = claims.IssuedAt.UTC().Format(time.RFC3339)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
