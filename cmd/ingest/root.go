package main

import "github.com/spf13/cobra"

var (
	skipDuplicates bool
	asSubmission   bool
	uploadedBy     string
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Batch content-ingestion pipeline for the shelf catalog",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", true, "Skip items whose identifier already exists in the catalog")
	runCmd.Flags().BoolVar(&asSubmission, "as-submission", false, "Insert pending submissions instead of published rows")
	runCmd.Flags().StringVar(&uploadedBy, "uploader", "", "Identity recorded on inserted rows")
}
