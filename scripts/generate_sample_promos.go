//go:build ignore

package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Writes gzipped promo code batches for `bistroctl promo import`.
// SPRING25 appears in both files and is created once.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	batches := map[string][]string{
		"launch.gz": {
			"WELCOME10",
			"BISTRO15",
			"SPRING25",
			"LUNCHCLUB",
		},
		"newsletter.gz": {
			"SPRING25",
			"NEWS2026",
			"DATENIGHT",
		},
	}

	for filename, codes := range batches {
		filePath := filepath.Join(dataDir, filename)

		if err := writeBatch(filePath, codes); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(codes))
	}

	fmt.Println("\nImport with:")
	fmt.Println("  bistroctl promo import -discount 10 -max-uses 100 data/promos/launch.gz data/promos/newsletter.gz")
}

func writeBatch(filePath string, codes []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, code := range codes {
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", code); err != nil {
			return fmt.Errorf("failed to write code: %w", err)
		}
	}

	return nil
}
