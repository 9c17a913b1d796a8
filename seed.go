package main

import (
	"context"
	"fmt"
	"time"

	"brilliora/seed"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample catalog and demo orders",
		Long: `Insert the sample jewelry catalog when the products collection is empty,
and three demo orders for the first registered user when that user has none.`,
		RunE: runSeed,
	}

	cmd.Flags().String("env-file", "", "Path to a .env file (defaults to ./.env)")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, logger, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	st, err := openStores(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	seeder := &seed.Seeder{
		Products: st.products,
		Orders:   st.orders,
		Users:    st.users,
		Logger:   logger,
	}
	res, err := seeder.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products and %d orders\n", res.Products, res.Orders)
	return nil
}
