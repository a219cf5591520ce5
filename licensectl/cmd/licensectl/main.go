package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"licensegate/licensectl/internal/cli"
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "licensectl",
		Short:        "Authenticate and manage licenses",
		SilenceUsage: true,
	}
	opts := cli.NewOptions(root)

	root.AddCommand(
		cli.NewAuthCommand(opts),
		cli.NewAddressCommand(opts),
		cli.NewLicenseCommand(opts),
		cli.NewUserCommand(opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
