package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

func newCreateSuperuserCmd(envFile *string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an admin identity and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := createSuperuser(cmd.Context(), a.users, a.auth, a.tokens, email, password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created. Token: %s\n", email, token.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address of the new admin")
	cmd.Flags().StringVar(&password, "password", "", "Password for the new admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetPasswordCmd(envFile *string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "setpassword",
		Short: "Set or clear the password of an existing identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := setPassword(cmd.Context(), a.users, a.auth, email, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s.\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address of the identity")
	cmd.Flags().StringVar(&password, "password", "", "New password; empty clears it")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func openApp(envFile string) (*app, error) {
	cfg, logger, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger, false)
}

func createSuperuser(ctx context.Context, users services.UserServiceInterface, auth services.AuthServiceInterface, tokens services.TokenServiceInterface, email, password string) (*models.Token, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	user, err := users.Create(ctx, models.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		return nil, fmt.Errorf("%s is already registered", email)
	}
	if err != nil {
		return nil, err
	}

	return tokens.Issue(ctx, user.ID)
}

func setPassword(ctx context.Context, users services.UserServiceInterface, auth services.AuthServiceInterface, email, password string) error {
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}

	var hash string
	if password != "" {
		if hash, err = auth.HashPassword(password); err != nil {
			return fmt.Errorf("invalid password: %w", err)
		}
	}
	return users.SetPassword(ctx, user.ID, hash)
}
