// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/dataconsole/internal/router"
)

func newPasswordCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change or reset a password",
	}

	var newPassword string
	change := &cobra.Command{
		Use:   "change",
		Short: "Set a new password for the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readSecret(cmd, newPassword, "new password")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				// Lands on the reset page when the password expired, home otherwise.
				if _, err := a.router.Push(ctx, router.Named(router.ForcePasswordReset)); err != nil {
					return err
				}
				if !a.session.IsAuthenticated() {
					return errNotLoggedIn
				}
				if err := a.session.UpdatePassword(ctx, secret); err != nil {
					return fmt.Errorf("update password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
				return nil
			})
		},
	}
	change.Flags().StringVarP(&newPassword, "password", "p", "", "new password (default: read from stdin)")

	forgot := &cobra.Command{
		Use:   "forgot USERNAME",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.session.SendResetEmail(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reset email sent")
				return nil
			})
		},
	}

	var token, resetPassword string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readSecret(cmd, resetPassword, "new password")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.session.NewPassword(ctx, token, secret); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password reset; log in with the new password")
				return nil
			})
		},
	}
	reset.Flags().StringVar(&token, "token", "", "reset token from the email")
	reset.Flags().StringVarP(&resetPassword, "password", "p", "", "new password (default: read from stdin)")
	_ = reset.MarkFlagRequired("token")

	cmd.AddCommand(change, forgot, reset)
	return cmd
}

func newOTPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Manage one-time passwords",
	}

	// authed runs fn for a logged-in user whose password is current.
	authed := func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.navigate(ctx, router.Named(router.Home)); err != nil {
					return err
				}
				return fn(cmd, a, args)
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable CODE",
			Short: "Enable one-time passwords with a code from the authenticator",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(cmd *cobra.Command, a *app, args []string) error {
				if err := a.session.Enable2FA(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "One-time passwords enabled")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable one-time passwords for the current user",
			Args:  cobra.NoArgs,
			RunE: authed(func(cmd *cobra.Command, a *app, _ []string) error {
				a.session.Disable2FA(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "One-time passwords disabled")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "disable-user USER_ID",
			Short: "Disable one-time passwords for another user (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(cmd *cobra.Command, a *app, args []string) error {
				a.session.DisableUser2FA(cmd.Context(), args[0])
				fmt.Fprintln(cmd.OutOrStdout(), "Requested")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "qr",
			Short: "Print the authenticator QR code as a data URI",
			Args:  cobra.NoArgs,
			RunE: authed(func(cmd *cobra.Command, a *app, _ []string) error {
				uri := a.session.GenerateQRCode(cmd.Context())
				if uri == "" {
					return errors.New("no QR code available")
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
				return nil
			}),
		},
	)
	return cmd
}

func newUnlockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock USER_ID",
		Short: "Clear a user's failed-login lockout (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				if err := a.navigate(ctx, router.Route{Name: "users", Path: "/users"}); err != nil {
					return err
				}
				a.session.UnlockUser(ctx, args[0])
				fmt.Fprintln(cmd.OutOrStdout(), "Requested")
				return nil
			})
		},
	}
}
