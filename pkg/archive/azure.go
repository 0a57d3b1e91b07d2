// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/retry"
)

type azureConnector struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzureBlobConnector builds a connector authenticated with a shared key.
func NewAzureBlobConnector(cfg config.AzureConfig) (Connector, error) {
	if cfg.Account == "" || cfg.Key == "" || cfg.Container == "" {
		return nil, fmt.Errorf("archive.azure.account/key/container required for azure connector")
	}
	credential, err := azblob.NewSharedKeyCredential(cfg.Account, cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("build shared key credential: %w", err)
	}
	url := cfg.Endpoint
	if url == "" {
		url = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.Account)
	}
	// Publisher owns retries.
	opts := &azblob.ClientOptions{ClientOptions: policy.ClientOptions{
		Retry: policy.RetryOptions{MaxRetries: -1},
	}}
	client, err := azblob.NewClientWithSharedKeyCredential(url, credential, opts)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &azureConnector{
		client:    client,
		container: cfg.Container,
		prefix:    cfg.Prefix,
	}, nil
}

func (a *azureConnector) Name() string {
	return "azure"
}

func (a *azureConnector) Store(ctx context.Context, assessmentID, name string, data []byte) error {
	blobName := keyFor(a.prefix, assessmentID, name)
	if _, err := a.client.UploadBuffer(ctx, a.container, blobName, data, nil); err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode >= 500 {
			return retry.Transient(fmt.Errorf("azure upload %s: %w", blobName, err))
		}
		return fmt.Errorf("azure upload %s: %w", blobName, err)
	}
	return nil
}
