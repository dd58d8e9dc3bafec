package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/auth"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenScopes  []string
	tokenTTL     time.Duration
)

// tokenCmd mints caller tokens for the HTTP API
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	Long: `Issue a bearer token signed with auth.jwt_secret.

Scopes:
  reconcile      - POST /api/v1/reconcile
  session:admin  - POST /api/v1/session/invalidate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueToken(cmd.OutOrStdout(), cfg.Auth, tokenSubject, tokenTTL, tokenScopes)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Caller name recorded in the token (required)")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{auth.ScopeReconcile}, "Granted scopes")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default auth.token_ttl)")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func issueToken(w io.Writer, authCfg config.AuthConfig, subject string, ttl time.Duration, scopes []string) error {
	if authCfg.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not set; caller authentication is disabled")
	}
	for _, s := range scopes {
		if s != auth.ScopeReconcile && s != auth.ScopeSessionAdmin {
			return fmt.Errorf("unknown scope %q", s)
		}
	}
	if ttl <= 0 {
		ttl = authCfg.TokenTTL
	}

	svc, err := auth.NewJWTService(auth.Config{Secret: authCfg.JWTSecret, Issuer: authCfg.JWTIssuer, TTL: ttl})
	if err != nil {
		return err
	}
	token, expiresAt, err := svc.Issue(subject, scopes...)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, token)
	fmt.Fprintf(w, "# expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
