package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/platefull/platefull-api/internal/config"
)

// Store uploads and deletes recipe images in an S3 bucket.
type Store struct {
	cfg *config.Config
}

// New creates a new Store from the app config.
func New(cfg *config.Config) *Store {
	return &Store{cfg: cfg}
}

// newS3Client creates a new S3 client from the app config.
// When AWS access key and secret are provided, static credentials are used;
// otherwise the default credential chain is preserved (IAM role, instance
// profile, etc.) so ECS/EC2 task roles work without explicit keys.
func (s *Store) newS3Client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.cfg.EnvVars.AWSRegion),
	}

	if s.cfg.EnvVars.AWSAccessKeyID != "" && s.cfg.EnvVars.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.EnvVars.AWSAccessKeyID,
			s.cfg.EnvVars.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Upload uploads the image bytes under the given key and returns the
// location URL.
func (s *Store) Upload(ctx context.Context, key string, imgBytes []byte) (string, error) {
	client, err := s.newS3Client(ctx)
	if err != nil {
		return "", err
	}

	uploader := manager.NewUploader(client)

	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.EnvVars.S3Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(imgBytes),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	return result.Location, nil
}

// Delete removes the object with the given key from the bucket.
func (s *Store) Delete(ctx context.Context, key string) error {
	client, err := s.newS3Client(ctx)
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.EnvVars.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %v", err)
	}

	return nil
}

// GenerateRecipeImageKey generates a fresh S3 key for a recipe image with
// the given file extension.
func GenerateRecipeImageKey(ext string) string {
	return fmt.Sprintf("recipes/images/%s.%s", uuid.New().String(), ext)
}
