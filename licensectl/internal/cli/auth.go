package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"licensegate/licenseauth"
	"licensegate/licensectl/internal/config"
)

var ErrLicenseInvalid = errors.New("license is not valid")

func NewAuthCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "auth <license>",
		Short: "Authenticate a license for this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boot, err := opts.bootstrap()
			if err != nil {
				return err
			}
			resolver, err := licenseauth.ResolverByName(boot.Resolver)
			if err != nil {
				return err
			}

			auth, err := licenseauth.New(boot.Host,
				licenseauth.WithSecureTransport(boot.Secure),
				licenseauth.WithResolver(resolver),
				licenseauth.WithTimeout(boot.Timeout),
				licenseauth.WithLogger(opts.logger()),
			)
			if err != nil {
				return err
			}
			defer auth.Close()

			valid, err := auth.AuthenticateLicense(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !valid {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return ErrLicenseInvalid
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func NewAddressCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the IPv4 address license checks are made from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := licenseauth.ResolverByName(config.ResolverName(opts.Resolver))
			if err != nil {
				return err
			}
			ip, err := resolver.ResolveIPv4(cmd.Context())
			if err != nil {
				return &licenseauth.HostResolutionError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		},
	}
}
