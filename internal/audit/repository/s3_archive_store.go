package repository

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// PutObjectAPI is the subset of *s3.Client used by S3ArchiveStore.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ArchiveStore uploads audit exports to a bucket with server-side encryption.
type S3ArchiveStore struct {
	client PutObjectAPI
	bucket string
}

// Put uploads body under key.
func (s *S3ArchiveStore) Put(ctx context.Context, key string, body io.Reader) error {
	// PutObject needs a seekable body to compute the payload hash.
	data, err := io.ReadAll(body)
	if err != nil {
		return apperrors.Wrap(err, "failed to read archive body")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String("application/x-ndjson"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return apperrors.Wrapf(err, "failed to upload audit archive to s3://%s/%s", s.bucket, key)
	}
	return nil
}

// NewS3ArchiveStore creates an archive store for bucket.
func NewS3ArchiveStore(client PutObjectAPI, bucket string) *S3ArchiveStore {
	return &S3ArchiveStore{client: client, bucket: bucket}
}
