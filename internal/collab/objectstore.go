package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// BucketLister lists buckets from the object-storage collaborator.
type BucketLister interface {
	ListBuckets(ctx context.Context) ([]string, error)
}

// HTTPBucketLister fetches the bucket listing from an HTTP endpoint.
type HTTPBucketLister struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBucketLister constructs a lister against the configured endpoint.
func NewHTTPBucketLister(baseURL string) *HTTPBucketLister {
	return &HTTPBucketLister{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type bucketListing struct {
	Buckets []struct {
		Name string `json:"name"`
	} `json:"buckets"`
}

// ListBuckets returns the bucket names from the listing endpoint.
func (l *HTTPBucketLister) ListBuckets(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/buckets", nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("object storage returned status %d", resp.StatusCode)
	}

	var listing bucketListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	names := make([]string, 0, len(listing.Buckets))
	for _, b := range listing.Buckets {
		names = append(names, b.Name)
	}
	return names, nil
}
