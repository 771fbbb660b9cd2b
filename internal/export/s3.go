package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ExportPrefix is the key prefix of uploaded exports.
const ExportPrefix = "exports/"

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader publishes rendered exports to a bucket.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	newID  func() string
}

// NewS3Uploader returns an uploader writing into bucket.
func NewS3Uploader(client PutObjectAPI, bucket string) *S3Uploader {
	return &S3Uploader{
		client: client,
		bucket: bucket,
		newID:  func() string { return uuid.NewString() },
	}
}

// Upload stores body under exports/<uuid>.<format> and returns the
// s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, f Format, filename string, body []byte) (string, error) {
	key := ExportPrefix + u.newID() + "." + string(f)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(f.ContentType()),
	}
	if filename != "" {
		input.ContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", strings.ReplaceAll(filename, `"`, "")))
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s to s3://%s: %w", key, u.bucket, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
