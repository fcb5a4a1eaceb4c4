package secrets

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// gcsReader reads objects with application default credentials.
type gcsReader struct{}

func (gcsReader) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing storage client: %w", err)
	}
	defer client.Close()

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Bucket(%q).Object(%q): %w", bucket, object, err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func parseGCSLocation(location string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(location, gcsScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid storage location %q, want gs://bucket/object", location)
	}
	return bucket, object, nil
}
