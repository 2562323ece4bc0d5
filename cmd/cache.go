package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Geocode cache maintenance",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached geocode count and recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("cache: no store configured (store.driver is none)")
		}
		defer st.Close()

		count, err := st.CountGeocodes(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("cached geocodes: %d\n", count)

		runs, err := st.ListRuns(ctx, 10)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %-9s limit=%-4d features=%-4d skipped=%-3d %s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.SortKey, r.Limit, r.Features, r.Skipped, r.ID,
			)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached geocode results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("cache: no store configured (store.driver is none)")
		}
		defer st.Close()

		n, err := st.ClearGeocodes(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("cleared %d cached geocodes\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
