package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pugetworks/healthmap-cli/internal/fetcher"
)

var (
	fetchQueryFile string
	fetchOut       string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the results page and save it as a fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := loadQuery(fetchQueryFile)
		if err != nil {
			return err
		}

		source := buildSource("")
		if _, ok := source.(*fetcher.FileSource); ok {
			return eris.New("fetch: fixture_path is configured; nothing to fetch")
		}

		page, err := source.Fetch(cmd.Context(), q)
		if err != nil {
			return err
		}

		if err := os.WriteFile(fetchOut, page.Content, 0o644); err != nil {
			return eris.Wrapf(err, "write fixture %s", fetchOut)
		}
		fmt.Printf("saved %d bytes to %s (charset=%s)\n", len(page.Content), fetchOut, page.Charset)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchQueryFile, "query-file", "", "YAML file with Results.aspx search parameters")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "load_inspection.html", "fixture output path")
	rootCmd.AddCommand(fetchCmd)
}
