package main

import (
	"fmt"
	"shop-relay/auth"
	"shop-relay/domain"
	"time"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var admin bool
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "token <userId>",
		Short: "Sign a development token with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			var roles []string
			if admin {
				roles = append(roles, string(domain.RoleAdmin))
			}
			token, err := auth.NewTokens(config.Secret).GenerateToken(args[0], roles, duration)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&duration, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
