package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3FileSystem stores files as objects in an S3 bucket
type S3FileSystem struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3FileSystem returns a filesystem backed by the given bucket. All keys
// are namespaced under prefix when it is non-empty.
func NewS3FileSystem(client *s3.Client, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *S3FileSystem) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3FileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	stream, err := s.ReadFileStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fsx.ErrReadFailed(err).WithDetail("path", path)
	}
	return data, nil
}

func (s *S3FileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fsx.ErrFileNotFound().WithDetail("path", path)
		}
		return nil, fsx.ErrReadFailed(err).WithDetail("path", path)
	}
	return out.Body, nil
}

func (s *S3FileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	return s.WriteFileStream(ctx, path, bytes.NewReader(data))
}

func (s *S3FileSystem) WriteFileStream(ctx context.Context, path string, reader io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
		Body:   reader,
	})
	if err != nil {
		return fsx.ErrWriteFailed(err).WithDetail("path", path)
	}
	return nil
}

func (s *S3FileSystem) DeleteFile(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fsx.ErrDeleteFailed(err).WithDetail("path", path)
	}
	return nil
}

func (s *S3FileSystem) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fsx.ErrReadFailed(err).WithDetail("path", path)
	}
	return true, nil
}

func (s *S3FileSystem) URL(path string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, s.key(path))
}
