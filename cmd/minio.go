package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"WaveFM/config"
	"WaveFM/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioStats  bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the blob buckets",
	Long:  `Lists objects or prints statistics for the song and thumbnail buckets.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO endpoint: %s, buckets: %s, %s\n",
			cfg.MinioEndpoint, cfg.SongBucket, cfg.ThumbnailBucket)

		if err := storage.InitMinio(); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		for _, bucket := range []string{cfg.SongBucket, cfg.ThumbnailBucket} {
			if minioStats {
				stats, err := storage.CollectBucketStats(ctx, bucket)
				if err != nil {
					log.Fatalf("Failed to collect stats for %s: %v", bucket, err)
				}
				fmt.Printf("\nBucket: %s\n", stats.Bucket)
				fmt.Printf("Objects: %d\n", stats.TotalObjects)
				fmt.Printf("Total size: %.2f MB\n", float64(stats.TotalSize)/1024/1024)
				if !stats.LastModified.IsZero() {
					fmt.Printf("Last modified: %s\n", stats.LastModified.Format(time.RFC3339))
				}
			} else {
				fmt.Printf("\nObjects in %s (prefix %q):\n", bucket, minioPrefix)
				if err := storage.ListBucketObjects(ctx, bucket, minioPrefix); err != nil {
					log.Fatalf("Failed to list %s: %v", bucket, err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "filter objects by prefix")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "print bucket statistics instead of listing")

	minioCmd.Example = `  # List every blob in both buckets
  wavefm minio

  # Filter by prefix
  wavefm minio -p "17"

  # Bucket statistics
  wavefm minio -s`
}
