package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"hotel-pms/models"
)

// SaveBase64Image decodes a base64 payload (with or without a data: header)
// into uploads/<subdir>/ and returns the relative URL path stored in the DB.
func SaveBase64Image(b64 string, subdir string) (string, error) {
	if idx := strings.Index(b64, "base64,"); idx >= 0 {
		b64 = b64[idx+7:]
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return writeImage(data, subdir)
}

func writeImage(data []byte, subdir string) (string, error) {
	dir := filepath.Join("uploads", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	filename := uuid.NewString() + ".jpg"
	fullpath := filepath.Join(dir, filename)

	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(fullpath), nil
}

// ResolveImages turns a mixed list of pre-hosted URLs and base64 payloads
// into URL strings. A data: header always means base64. Long strings without
// a URL scheme are treated as headerless base64 when they actually decode
// (the alphabet includes "/", so looks cannot be trusted); anything else
// passes through untouched. The second return value lists files written
// locally so a failed create/update can clean them up.
func ResolveImages(inputs []string, subdir string) ([]string, []string, error) {
	urls := make([]string, 0, len(inputs))
	saved := []string{}

	for _, in := range inputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		if strings.HasPrefix(in, "data:") {
			path, err := SaveBase64Image(in, subdir)
			if err != nil {
				CleanupImages(saved)
				return nil, nil, err
			}
			urls = append(urls, path)
			saved = append(saved, path)
			continue
		}
		if !strings.Contains(in, "://") && len(in) > 128 {
			if data, err := base64.StdEncoding.DecodeString(in); err == nil {
				path, err := writeImage(data, subdir)
				if err != nil {
					CleanupImages(saved)
					return nil, nil, err
				}
				urls = append(urls, path)
				saved = append(saved, path)
				continue
			}
		}
		urls = append(urls, in)
	}
	return urls, saved, nil
}

// MergeImages appends incoming URLs to the existing list and truncates to the
// first MaxImagesPerEntity entries, so the oldest images win when the cap is
// exceeded.
func MergeImages(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	seen := map[string]bool{}
	for _, u := range existing {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		merged = append(merged, u)
	}
	for _, u := range incoming {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		merged = append(merged, u)
	}
	if len(merged) > models.MaxImagesPerEntity {
		merged = merged[:models.MaxImagesPerEntity]
	}
	return merged
}

// CleanupUnreferenced removes freshly saved files that did not make it into
// the stored list, typically because the image cap truncated them out.
func CleanupUnreferenced(saved, kept []string) {
	if len(saved) == 0 {
		return
	}
	keep := map[string]bool{}
	for _, u := range kept {
		keep[u] = true
	}
	var orphans []string
	for _, p := range saved {
		if !keep[p] {
			orphans = append(orphans, p)
		}
	}
	CleanupImages(orphans)
}

// CleanupImages removes files written during an operation that then failed.
// This is the only compensating action the service performs; remote URLs are
// left alone.
func CleanupImages(paths []string) {
	for _, p := range paths {
		if p == "" || strings.Contains(p, "://") {
			continue
		}
		if err := os.Remove(filepath.FromSlash(p)); err != nil && !os.IsNotExist(err) {
			log.Printf("warning: failed to remove uploaded file %s: %v", p, err)
		}
	}
}
