package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/yoj3289/WeNectProject/internal/middleware"
)

var (
	tokenUserId int64
	tokenRole   string
	tokenTTL    time.Duration
)

// tokenCmd 签发访问令牌, 供本地调试和运维脚本使用
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with auth.jwt_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenUserId <= 0 {
				return errors.New("--user-id is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}

			now := time.Now()
			signed, err := middleware.IssueToken(cfg.Auth.JWTSecret, tokenUserId, tokenRole, jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&tokenUserId, "user-id", 0, "user id carried by the token")
	cmd.Flags().StringVar(&tokenRole, "role", "", "role carried by the token, e.g. admin")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
