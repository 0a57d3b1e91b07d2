// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/retry"
)

type s3Connector struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Connector builds an S3 connector using the AWS default credential chain.
func NewS3Connector(ctx context.Context, cfg config.S3Config) (Connector, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive.s3.bucket required when enabling s3 connector")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newS3ConnectorFromConfig(awsCfg, cfg), nil
}

func newS3ConnectorFromConfig(awsCfg aws.Config, cfg config.S3Config) *s3Connector {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Connector{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

func (s *s3Connector) Name() string {
	return "s3"
}

func (s *s3Connector) Store(ctx context.Context, assessmentID, name string, data []byte) error {
	key := keyFor(s.prefix, assessmentID, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
		ACL:    types.ObjectCannedACLPrivate,
		Metadata: map[string]string{
			"assessment_id": assessmentID,
		},
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		var re *awshttp.ResponseError
		if errors.As(err, &re) && re.HTTPStatusCode() >= 500 {
			return retry.Transient(fmt.Errorf("s3 put %s: %w", key, err))
		}
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
