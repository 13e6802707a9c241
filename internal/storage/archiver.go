// Package storage exports completed campaign results to S3-compatible
// object storage. Archiving is optional; a nil Archiver disables it and the
// pipeline treats upload failures as non-fatal.
package storage

import (
	"context"
	"io"
)

// Archiver writes finished campaign documents to durable object storage.
type Archiver interface {
	// Upload stores an object under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the URL for accessing an archived object.
	GetURL(key string) string
}

// ResultsKey returns the object key for a campaign's archived results.
func ResultsKey(campaignID string) string {
	return "campaigns/" + campaignID + ".json"
}
