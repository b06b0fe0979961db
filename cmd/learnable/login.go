package main

import (
	"github.com/spf13/cobra"

	"github.com/kode4food/learnable/internal/backend"
)

type loginFlags struct {
	email    string
	password string
}

func newLoginCommand(a *learnable) *cobra.Command {
	flags := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to LearnABLE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.email == "" {
				flags.email = a.prompt("Email")
			}
			if flags.password == "" {
				flags.password = a.prompt("Password")
			}
			res, err := a.client.Login(cmd.Context(), &backend.Credentials{
				Email:    flags.email,
				Password: flags.password,
			})
			if err != nil {
				return err
			}
			name := res.FirstName
			if name == "" {
				name = flags.email
			}
			a.printf("Welcome, %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "Account email")
	cmd.Flags().StringVar(&flags.password, "password", "",
		"Account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(a *learnable) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			a.println("Signed out")
			return nil
		},
	}
}
