// Package publish uploads synthesized assets to S3 under content-addressed keys.
package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/lex00/eks-blueprints-go/construct"
	"github.com/lex00/eks-blueprints-go/internal/template"
)

var (
	// ErrBucketNotFound is returned when the target bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrNoBucket is returned when no bucket was given and none can be derived.
	ErrNoBucket = errors.New("no bucket: pass --bucket or set an account and region")
)

// Asset is a single file to upload.
type Asset struct {
	Name        string
	Ext         string
	ContentType string
	Data        []byte
}

// Object records where an asset was uploaded.
type Object struct {
	Name   string `json:"name"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Client wraps the S3 client used for uploads.
type Client struct {
	s3 *s3.Client
}

// NewClient builds a client from the default AWS credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Client{s3: s3.NewFromConfig(cfg)}, nil
}

// PutObject uploads data to bucket/key.
func (c *Client) PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		if isBucketNotFound(err) {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, bucket, err)
	}
	return nil
}

// isBucketNotFound checks for NoSuchBucket, typed or by API error code.
func isBucketNotFound(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchBucket"
	}
	return false
}

// DefaultBucket returns the bootstrap asset bucket for an environment.
func DefaultBucket(account, region string) (string, error) {
	if account == "" || region == "" {
		return "", ErrNoBucket
	}
	return fmt.Sprintf("cdk-hnb659fds-assets-%s-%s", account, region), nil
}

// Key returns prefix/<sha256 of data>.ext.
func Key(prefix string, data []byte, ext string) string {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + "." + ext
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Assets renders the stack template, plus its manifest bundle if any.
func Assets(stack *construct.Stack, format construct.Format) ([]Asset, error) {
	tmpl, err := stack.Synth()
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s: %w", stack.ID(), err)
	}

	asset := Asset{Name: stack.ID() + ".template"}
	switch format {
	case construct.FormatYAML:
		asset.Ext, asset.ContentType = "yaml", "application/x-yaml"
		asset.Data, err = template.ToYAML(tmpl)
	default:
		asset.Ext, asset.ContentType = "json", "application/json"
		asset.Data, err = template.ToJSON(tmpl)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", asset.Name, err)
	}
	assets := []Asset{asset}

	manifests, err := stack.ManifestsYAML()
	if err != nil {
		return nil, fmt.Errorf("encoding manifests: %w", err)
	}
	if manifests != nil {
		assets = append(assets, Asset{
			Name:        stack.ID() + ".manifests",
			Ext:         "yaml",
			ContentType: "application/x-yaml",
			Data:        manifests,
		})
	}
	return assets, nil
}

// Publisher uploads assets to one bucket and prefix.
type Publisher struct {
	Client *Client
	Bucket string
	Prefix string
}

// Publish uploads each asset and reports where it went. It stops at the
// first failure.
func (p *Publisher) Publish(ctx context.Context, assets []Asset) ([]Object, error) {
	objects := make([]Object, 0, len(assets))
	for _, a := range assets {
		key := Key(p.Prefix, a.Data, a.Ext)
		if err := p.Client.PutObject(ctx, p.Bucket, key, a.ContentType, a.Data); err != nil {
			return objects, fmt.Errorf("publishing %s: %w", a.Name, err)
		}
		slog.Debug("published asset", "name", a.Name, "bucket", p.Bucket, "key", key)
		objects = append(objects, Object{Name: a.Name, Bucket: p.Bucket, Key: key})
	}
	return objects, nil
}
