package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/OFFIS-RIT/graphlift/pkg/loader"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectGetter is the part of *s3.Client the fetcher needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher loads table files from an S3 bucket below a key prefix.
//
// It works with any S3 compatible storage such as MinIO, as long as the
// client is configured with the right endpoint.
type S3Fetcher struct {
	bucket string
	prefix string
	client ObjectGetter
}

// NewS3Fetcher creates a fetcher for s3://bucket/prefix.
func NewS3Fetcher(client ObjectGetter, bucket, prefix string) *S3Fetcher {
	return &S3Fetcher{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		client: client,
	}
}

// ParseURI splits "s3://bucket/some/prefix" into bucket and prefix.
func ParseURI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// Fetch downloads prefix/name. A missing key wraps loader.ErrTableNotFound.
func (f *S3Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := name
	if f.prefix != "" {
		key = path.Join(f.prefix, name)
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", loader.ErrTableNotFound, f.bucket, key)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", f.bucket, key, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", f.bucket, key, err)
	}
	return buf.Bytes(), nil
}
