package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewUserCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage license server accounts",
	}
	cmd.AddCommand(
		newUserCreateCommand(opts),
		newUserLoginCommand(opts),
		newUserRankCommand(opts),
	)
	return cmd
}

type credentials struct {
	Username string
	Email    string
	Password string
}

func newUserCreateCommand(opts *Options) *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.serverClient()
			if err != nil {
				return err
			}
			token, err := api.CreateUser(cmd.Context(), creds.Username, creds.Email, creds.Password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Username, "username", "", "account username")
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newUserLoginCommand(opts *Options) *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for an account token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.serverClient()
			if err != nil {
				return err
			}
			token, err := api.Login(cmd.Context(), creds.Username, creds.Password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Username, "username", "", "account username")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newUserRankCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Print the rank of the account behind --token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, boot, err := opts.serverClient()
			if err != nil {
				return err
			}
			if boot.Token == "" {
				return errTokenRequired
			}
			rank, err := api.UserRank(cmd.Context(), boot.Token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rank)
			return nil
		},
	}
}
