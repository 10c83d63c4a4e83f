// Command seed bulk-loads a directory of images into a running lookalike
// instance by posting each file to the upload endpoint.
//
// Usage:
//
//	seed -addr http://localhost:8080 -dir ./photos -concurrency 8
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the lookalike service")
	dir := flag.String("dir", ".", "directory to scan for images")
	concurrency := flag.Int("concurrency", 8, "number of parallel uploads")
	flag.Parse()

	if err := run(*addr, *dir, *concurrency); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, dir string, concurrency int) error {
	paths, err := collectImages(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found under %s", dir)
	}

	slog.Info("seeding", "images", len(paths), "target", addr, "concurrency", concurrency)

	client := &http.Client{Timeout: 2 * time.Minute}
	start := time.Now()

	var done atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	for _, path := range paths {
		g.Go(func() error {
			id, err := uploadImage(ctx, client, addr, path)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", path, err)
			}
			slog.Info("uploaded", "file", filepath.Base(path), "id", id)
			done.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("seed complete", "images", done.Load(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// collectImages walks dir and returns the paths of all files with a known
// image extension.
func collectImages(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// uploadImage posts a single file as a multipart upload and returns the
// identifier the service assigned.
func uploadImage(ctx context.Context, client *http.Client, addr, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return result.ID, nil
}
