package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"licensegate/licensectl/internal/config"
	"licensegate/licensectl/internal/serverapi"
)

// Options are the connection flags shared by every subcommand.
type Options struct {
	Host     string
	Insecure bool
	Resolver string
	Token    string
	Timeout  time.Duration
	Verbose  bool
}

func NewOptions(root *cobra.Command) *Options {
	opts := &Options{}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.Host, "host", "", "license server host[:port] (env LICENSE_HOST)")
	flags.BoolVar(&opts.Insecure, "insecure", false, "use plain http instead of https (env LICENSE_INSECURE)")
	flags.StringVar(&opts.Resolver, "resolver", "", "local address resolver: hostname, interface, netlink, public, static:<ip> (env LICENSE_RESOLVER)")
	flags.StringVar(&opts.Token, "token", "", "account token (env LICENSE_TOKEN)")
	flags.DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "request timeout")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")
	return opts
}

func (o *Options) bootstrap() (config.Bootstrap, error) {
	return config.Load(config.Input{
		Host:     o.Host,
		Insecure: o.Insecure,
		Resolver: o.Resolver,
		Token:    o.Token,
		Timeout:  o.Timeout,
	})
}

func (o *Options) logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func (o *Options) serverClient() (*serverapi.Client, config.Bootstrap, error) {
	boot, err := o.bootstrap()
	if err != nil {
		return nil, config.Bootstrap{}, err
	}
	return serverapi.New(boot.BaseURL(), boot.Timeout), boot, nil
}
