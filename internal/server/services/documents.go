package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	sc "github.com/IscoRuta98/ArdhiHub-server/internal/server/config"
)

// DocumentService stores land deed documents in S3-compatible object
// storage (DigitalOcean Spaces in production, MinIO in development) and
// hands out their URLs.
type DocumentService struct {
	config *sc.Config
}

func NewDocumentService(config *sc.Config) *DocumentService {
	return &DocumentService{config: config}
}

// GetRandomStorageKey builds a date-sharded object key for a new document.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("records/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *DocumentService) getClient() (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return client, nil
}

// Upload stores a deed document and returns its public URL. The URL goes
// into the record row and later becomes the asset URL on the ledger.
func (s *DocumentService) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {

	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("error uploading document: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.config.S3BaseEndpoint, "/"), bucket, key), nil
}

// GetPresignedGetUrl returns a short-lived download URL for an object key.
func (s *DocumentService) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {

	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := s3.NewPresignClient(client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
