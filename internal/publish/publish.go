// Package publish stores exported dashboard reports in a local directory or
// an S3 bucket.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher stores a named report and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, name string, body []byte, contentType string) (location string, err error)
}

// For returns the publisher for target: an S3Publisher for
// "s3://bucket/prefix" and a FilePublisher for anything else.
func For(ctx context.Context, target string) (Publisher, error) {
	if !strings.HasPrefix(target, "s3://") {
		if target == "" {
			target = "."
		}
		return &FilePublisher{Dir: target}, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid publish target %q: %w", target, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid publish target %q: missing bucket", target)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return NewS3Publisher(s3.NewFromConfig(cfg), u.Host, strings.Trim(u.Path, "/")), nil
}

// cleanName rejects names that would escape the publish root.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("illegal report name %q", name)
	}
	return clean, nil
}

// FilePublisher writes reports under Dir.
type FilePublisher struct {
	Dir string
}

// Publish implements Publisher. The content type is not recorded.
func (p *FilePublisher) Publish(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(p.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("error creating report directory: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("error writing report %s: %w", dest, err)
	}
	return dest, nil
}

// PutObjectAPI is the part of *s3.Client the S3Publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads reports to a bucket under a key prefix.
type S3Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Publisher creates an S3Publisher.
func NewS3Publisher(client PutObjectAPI, bucket, prefix string) *S3Publisher {
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Publish implements Publisher. It returns the s3:// URL of the object.
func (p *S3Publisher) Publish(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	key := clean
	if p.prefix != "" {
		key = p.prefix + "/" + clean
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("error uploading %s to bucket %s: %w", key, p.bucket, err)
	}
	return "s3://" + p.bucket + "/" + key, nil
}
