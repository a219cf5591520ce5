package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errTokenRequired = errors.New("an account token is required (--token or LICENSE_TOKEN)")

func NewLicenseCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Manage licenses on the license server",
	}
	cmd.AddCommand(
		newLicenseCountCommand(opts),
		newLicenseCreateCommand(opts),
		newLicenseSuspendCommand(opts),
		newLicenseDeleteCommand(opts),
		newLicenseClaimCommand(opts),
		newLicenseActiveCommand(opts),
	)
	return cmd
}

func newLicenseCountCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of licenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.serverClient()
			if err != nil {
				return err
			}
			n, err := api.CountLicenses(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newLicenseCreateCommand(opts *Options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a license valid for --days after first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, boot, err := opts.serverClient()
			if err != nil {
				return err
			}
			if boot.Token == "" {
				return errTokenRequired
			}
			key, err := api.CreateLicense(cmd.Context(), boot.Token, days)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "license duration in days")
	return cmd
}

func newLicenseSuspendCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "suspend <license>",
		Short: "Suspend a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, boot, err := opts.serverClient()
			if err != nil {
				return err
			}
			if boot.Token == "" {
				return errTokenRequired
			}
			if err := api.SuspendLicense(cmd.Context(), boot.Token, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "license suspended")
			return nil
		},
	}
}

func newLicenseDeleteCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <license>",
		Short: "Delete a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, boot, err := opts.serverClient()
			if err != nil {
				return err
			}
			if boot.Token == "" {
				return errTokenRequired
			}
			if err := api.DeleteLicense(cmd.Context(), boot.Token, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "license deleted")
			return nil
		},
	}
}

func newLicenseClaimCommand(opts *Options) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "claim <license>",
		Short: "Assign an unclaimed license to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.serverClient()
			if err != nil {
				return err
			}
			if err := api.ClaimLicense(cmd.Context(), args[0], owner); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "license claimed")
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "user ID of the new owner")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func newLicenseActiveCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "active <license>",
		Short: "Report whether a license is activated, unexpired and not suspended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := opts.serverClient()
			if err != nil {
				return err
			}
			active, err := api.LicenseActive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), active)
			return nil
		},
	}
}
