package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mplbm/micromodel/lbm/fetch"
)

var (
	geometryURL   string // URL of the raw rock geometry
	geometryDest  string // Where the geometry is stored
	downloadRetry int    // Retries after the first attempt
	forceDownload bool   // Re-download even if the file exists
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the raw rock geometry",
	Run: func(cmd *cobra.Command, args []string) {
		if err := downloadGeometry(cmd.Context(), geometryDest); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func downloadGeometry(ctx context.Context, dest string) error {
	logrus.Infof("Downloading geometry from %s", geometryURL)
	return fetch.Download(ctx, geometryURL, dest, fetch.Options{
		Retries: downloadRetry,
		Force:   forceDownload,
	})
}

func addDownloadFlags(c *cobra.Command) {
	c.Flags().StringVar(&geometryURL, "url", fetch.DefaultGeometryURL, "URL of the raw rock geometry")
	c.Flags().StringVar(&geometryDest, "dest", fetch.DefaultGeometryFile, "Destination of the downloaded geometry")
	c.Flags().IntVar(&downloadRetry, "retries", 3, "Download retries after the first attempt (negative disables retries)")
	c.Flags().BoolVar(&forceDownload, "force", false, "Download even if the destination already exists")
}

func init() {
	addDownloadFlags(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}
