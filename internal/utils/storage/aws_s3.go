package storage

import (
	"Go-Shopping-Sync/internal/utils"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrStorageDisabled = errors.New("object storage is not configured")

type (
	AwsS3 interface {
		// PutJSON stores body under key with an application/json content type.
		PutJSON(ctx context.Context, key string, body []byte) error
		Enabled() bool
	}

	awsS3 struct {
		client *s3.Client
		bucket string
	}
)

// NewAwsS3 builds the receipt store from AWS_S3_* keys. An empty bucket yields
// a disabled store whose writes return ErrStorageDisabled.
func NewAwsS3(ctx context.Context) (AwsS3, error) {
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	if bucket == "" {
		return &awsS3{}, nil
	}

	region := utils.GetConfig("AWS_S3_REGION")
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if key := utils.GetConfig("AWS_ACCESS_KEY"); key != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, utils.GetConfig("AWS_SECRET_KEY"), ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &awsS3{client: s3.NewFromConfig(awsCfg), bucket: bucket}, nil
}

func (s *awsS3) Enabled() bool {
	return s.client != nil
}

func (s *awsS3) PutJSON(ctx context.Context, key string, body []byte) error {
	if !s.Enabled() {
		return ErrStorageDisabled
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}
