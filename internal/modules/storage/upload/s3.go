package upload

import (
	"bytes"
	"context"
	"errors"
	"strings"

	appcfg "github.com/adityanetrakar/handwritten-eval-system/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Mirror archives uploaded documents to an S3-compatible bucket.
type Mirror struct {
	client *s3.Client
	bucket string
}

// NewMirror builds a Mirror from configuration. Returns (nil, nil) when the
// mirror is disabled.
func NewMirror(cfg appcfg.S3Config) (*Mirror, error) {
	if !cfg.Enable {
		return nil, nil
	}

	bucket := strings.TrimSpace(cfg.Bucket)
	region := strings.TrimSpace(cfg.Region)
	accessKey := strings.TrimSpace(cfg.AccessKeyID)
	secretKey := strings.TrimSpace(cfg.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: awscreds.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		}
		o.UsePathStyle = cfg.PathStyleAccess
	})

	return &Mirror{client: client, bucket: bucket}, nil
}

// Upload stores payload under key in the mirror bucket.
func (m *Mirror) Upload(ctx context.Context, key string, payload []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	return err
}
