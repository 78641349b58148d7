package dlcore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
)

// ObjectDescriptor is an immutable record produced by listing: one object
// key, its size, and whether it is a checksum manifest.
type ObjectDescriptor struct {
	Key        string
	Size       int64
	IsManifest bool
}

// S3API is the narrow subset of an S3 client the Listing and Object Fetch
// Adapters depend on, so a test can substitute an in-memory fake without a
// real client.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// NewS3Client builds an S3 client from static credentials and a region, as
// named by a parsed DownloadParams bag.
func NewS3Client(accessKey, secretKey, region string) *s3.Client {
	cfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	}
	return s3.NewFromConfig(cfg)
}

// ListingAdapter enumerates every non-directory object key under a
// project prefix, paginating transparently.
type ListingAdapter struct {
	Client S3API
}

// List returns every ObjectDescriptor under "project/" in bucket.
// Directory-marker keys (trailing "/") are discarded.
func (a *ListingAdapter) List(ctx context.Context, bucket, project string) ([]ObjectDescriptor, error) {
	prefix := project
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var out []ObjectDescriptor
	var token *string

	for {
		resp, err := a.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			MaxKeys:           aws.Int32(1000),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrListing, classifyS3Error(err))
		}

		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			out = append(out, ObjectDescriptor{
				Key:        key,
				Size:       aws.ToInt64(obj.Size),
				IsManifest: IsManifestKey(key),
			})
		}

		if aws.ToBool(resp.IsTruncated) && resp.NextContinuationToken != nil {
			token = resp.NextContinuationToken
			continue
		}
		break
	}

	return out, nil
}

// ObjectFetchAdapter streams object bytes, optionally starting at a byte
// offset via a "bytes=<start>-" range header.
type ObjectFetchAdapter struct {
	Client S3API
}

// Get opens a read stream for key. If rangeHeader is non-empty the server
// is asked to return only bytes at and after the requested offset.
func (a *ObjectFetchAdapter) Get(ctx context.Context, bucket, key, rangeHeader string) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if rangeHeader != "" {
		input.Range = aws.String(rangeHeader)
	}
	resp, err := a.Client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStream, classifyS3Error(err))
	}
	return resp.Body, nil
}

// FetchAll retrieves the full body of key as bytes, used for manifest
// ingestion where the whole object must be parsed at once.
func (a *ObjectFetchAdapter) FetchAll(ctx context.Context, bucket, key string) ([]byte, error) {
	body, err := a.Get(ctx, bucket, key, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestFetch, key, err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestFetch, key, err)
	}
	return data, nil
}

// classifyS3Error rewrites common AWS error codes into the user-facing
// messages named for the Listing Adapter's contract.
func classifyS3Error(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidAccessKeyId":
			return "invalid AWS access key; please check your credentials"
		case "SignatureDoesNotMatch":
			return "invalid AWS secret key; please check your credentials"
		case "AccessDenied":
			return "access denied: the credentials do not have permission to access this bucket"
		case "NoSuchBucket":
			return "the specified S3 bucket does not exist"
		}
	}
	return err.Error()
}
