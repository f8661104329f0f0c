package tools

import (
	"context"
	"fmt"

	"github.com/gamemaster/gamemaster-mcp-server/internal/collab"
	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
)

// countBucketsTool counts buckets via the object-storage collaborator.
type countBucketsTool struct {
	lister collab.BucketLister
}

// CountS3Buckets constructs the count_s3_buckets tool. A nil lister means
// object storage was not configured; the tool then reports a business error
// rather than failing the call.
func CountS3Buckets(lister collab.BucketLister) *countBucketsTool {
	return &countBucketsTool{lister: lister}
}

func (t *countBucketsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "count_s3_buckets",
		Description: "Count the number of S3 buckets.",
		InputSchema: &protocol.JSONSchema{Type: "object"},
	}
}

func (t *countBucketsTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.lister == nil {
		return "[ERROR] Object storage configuration missing.", nil
	}
	buckets, err := t.lister.ListBuckets(ctx)
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to list buckets: %v", err), nil
	}
	return len(buckets), nil
}
