package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reid-dashboard/internal/backend"
	"reid-dashboard/internal/titles"

	"github.com/spf13/cobra"
)

func newTitlesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "titles <file>",
		Short: "Fetch the page title of every URL in a file (one per line, # comments)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := loadURLsFromFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs found in %s", args[0])
			}

			loader := newProxy(a).Loader()
			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range loader.LoadAll(cmd.Context(), urls) {
				if r.Status == titles.StatusError {
					failed++
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", r.Status, r.URL, r.Title)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d titles loaded, %d failed\n", len(urls)-failed, failed)
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.json>",
		Short: "Upload a JSON file of URLs to the scraping queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			body, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if !backend.IsJSONUpload(path, "", body) {
				return fmt.Errorf("please upload a JSON file")
			}

			if err := a.backendClient().Upload(cmd.Context(), filepath.Base(path), bytes.NewReader(body)); err != nil {
				return fmt.Errorf("error uploading URLs: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "URLs uploaded successfully")
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile queue statuses with the listings table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.backendClient().SyncQueue(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to sync queues: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}
}

// loadURLsFromFile reads one URL per line, skipping blanks and # comments
func loadURLsFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}

	return urls, scanner.Err()
}
