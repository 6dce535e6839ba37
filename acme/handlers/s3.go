package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
)

func init() {
	Register("s3", s3Provider{})
}

// s3Provider builds handlers that publish http-01 proofs as public objects
// in an Amazon S3 bucket. This fits hosts that serve their well-known
// directory from a bucket behind a static-site or CDN frontend.
type s3Provider struct{}

func (s3Provider) IsSupported(chall *resources.Challenge) bool {
	return chall.Type == acme.ChallengeTypeHTTP01
}

func (s3Provider) Params() []ParameterDetail {
	return append([]ParameterDetail{
		{
			Name:        "bucket",
			Description: "Name of the S3 bucket backing the host's well-known directory",
			Required:    true,
		},
		{
			Name:        "keyPrefix",
			Description: "Prefix prepended to the challenge object key",
		},
	}, awsCredentialParams...)
}

func (s3Provider) GetHandler(chall *resources.Challenge, params Params) (Handler, error) {
	bucket := params.String("bucket")
	if bucket == "" {
		return nil, MissingParameterError{Name: "bucket"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadAWSConfig(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("s3: loading AWS config: %w", err)
	}

	return &s3Handler{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		keyPrefix: params.String("keyPrefix"),
	}, nil
}

type s3Handler struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	closed    bool
}

func (h *s3Handler) Handle(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	http := chall.Details.HTTP
	if http == nil {
		return fmt.Errorf("s3: challenge %q carries no HTTP proof", chall.URI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := h.objectKey(http)
	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(http.FileContent),
		ContentType: aws.String("text/plain"),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3: putting s3://%s/%s: %w", h.bucket, key, err)
	}
	return nil
}

func (h *s3Handler) CleanUp(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	http := chall.Details.HTTP
	if http == nil {
		return fmt.Errorf("s3: challenge %q carries no HTTP proof", chall.URI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := h.objectKey(http)
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3: deleting s3://%s/%s: %w", h.bucket, key, err)
	}
	return nil
}

func (h *s3Handler) Close() error {
	h.closed = true
	return nil
}

func (h *s3Handler) objectKey(http *resources.HTTPDetails) string {
	key := strings.TrimPrefix(http.FilePath, "/")
	if h.keyPrefix != "" {
		key = strings.TrimSuffix(h.keyPrefix, "/") + "/" + key
	}
	return key
}
