package avatars

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Settings points the store at an S3-compatible endpoint (MinIO in
// development).
type S3Settings struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// Uploader is the subset of *s3.Client the store needs.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type S3Store struct {
	client Uploader
	bucket string
	newID  func() string
}

// NewS3Store builds an S3 client from s.
func NewS3Store(ctx context.Context, s S3Settings) (*S3Store, error) {
	if s.Bucket == "" {
		return nil, errors.New("s3 bucket is not set")
	}
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, s.Bucket), nil
}

func NewS3StoreWithClient(client Uploader, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket, newID: uuid.NewString}
}

// Save uploads data-URI pictures to avatars/<username>/<uuid> and returns
// the s3:// reference.
func (s *S3Store) Save(ctx context.Context, username, picture string) (string, error) {
	if !IsDataURI(picture) {
		return picture, nil
	}
	contentType, body, err := decodeDataURI(picture)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s/%s", username, s.newID())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
