package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/sharpexec/internal/config"
	"github.com/geocoder89/sharpexec/internal/loginflow"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var (
		baseURL  string
		email    string
		callback string
		timeout  time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in against a running API and report where the session lands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}

			pw, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}

			cfg := config.Load()
			client, err := loginflow.NewHTTPClient(baseURL, cfg.SessionCookieName, timeout)
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			o := loginflow.NewOrchestrator(client, client, loginflow.Options{
				StepTimeout: timeout,
				Log:         log,
			})

			out, err := o.Submit(cmd.Context(), loginflow.Credentials{Email: email, Password: pw}, callback)
			if err != nil {
				return fmt.Errorf("%s: %w", loginflow.UserMessage(err), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\nlanded on %s", out.User.Email, out.User.Role, out.Path)
			if out.Strategy != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " via %s", out.Strategy)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&callback, "callback-url", "", "page to open after sign-in")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-request and per-navigation timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log navigation steps")

	return cmd
}
