// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/dataconsole/internal/router"
	"github.com/tomtom215/dataconsole/internal/session"
)

// readSecret returns value, or the first line of stdin when value is empty.
func readSecret(cmd *cobra.Command, value, what string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", what)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return line, nil
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password, otp string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		Long: `Log in with a username and password. When the account has one-time
passwords enabled the first attempt reports that a code is needed; run the
command again with --otp.

The password is read from stdin when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readSecret(cmd, password, "password")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				err := a.session.Login(ctx, username, secret, otp)
				if errors.Is(err, session.ErrOTPRequired) {
					return errors.New("one-time password required; run again with --otp")
				}
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Logged in as %s\n", a.session.User().DisplayName())
				if a.session.MustChangePassword() {
					fmt.Fprintln(out, `Your password has expired; run "dataconsole password change"`)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (default: read from stdin)")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				a.session.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

type whoami struct {
	Status             string     `json:"status"`
	UserID             string     `json:"user_id,omitempty"`
	Username           string     `json:"username,omitempty"`
	Name               string     `json:"name,omitempty"`
	Permissions        []string   `json:"permissions,omitempty"`
	OTPEnabled         bool       `json:"otp_enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	TokenExpires       *time.Time `json:"token_expires,omitempty"`
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Refresh the session and show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(a *app) error {
				got, err := a.router.Push(ctx, router.Named(router.Home))
				if err != nil {
					return err
				}
				if got.Name == router.Login {
					return printJSON(cmd.OutOrStdout(), whoami{Status: a.session.Status().String()})
				}

				state := a.session.Snapshot()
				out := whoami{
					Status:             a.session.Status().String(),
					OTPEnabled:         state.OTPRequired,
					MustChangePassword: state.MustChangePassword,
				}
				if u := state.User; u != nil {
					out.UserID = u.ID
					out.Username = u.Username
					out.Name = u.DisplayName()
					for name, held := range u.Permissions {
						if held {
							out.Permissions = append(out.Permissions, name)
						}
					}
					slices.Sort(out.Permissions)
				}
				if exp, ok := a.session.TokenExpiry(); ok {
					exp = exp.UTC()
					out.TokenExpires = &exp
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}
