package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of the S3 client used here.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // MinIO, LocalStack
	AccessKeyID     string
	SecretAccessKey string
}

// S3Storage keeps evidence files in a bucket.
type S3Storage struct {
	client s3API
	bucket string
	prefix string
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Storage(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Storage(client s3API, bucket, prefix string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Storage) Put(ctx context.Context, filename string, data []byte) (StoredFile, error) {
	hash := HashContent(data)
	name, err := objectName(hash, filename)
	if err != nil {
		return StoredFile{}, err
	}
	key := path.Join(s.prefix, name)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata:    map[string]string{"sha256": hash},
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return StoredFile{
		Location: "s3://" + s.bucket + "/" + key,
		Name:     strings.TrimPrefix(name, hash+"_"),
		Size:     int64(len(data)),
		Hash:     hash,
	}, nil
}

func (s *S3Storage) Get(ctx context.Context, location string) ([]byte, error) {
	key, ok := strings.CutPrefix(location, "s3://"+s.bucket+"/")
	if !ok {
		return nil, fmt.Errorf("location %q is not in bucket %s", location, s.bucket)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}
