package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// AWS loads the default AWS configuration for the configured region.
func (c *Config) AWS(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

// DatabaseConnString resolves the connection string, reading it from
// Secrets Manager when a secret ID is configured.
func (c *Config) DatabaseConnString(ctx context.Context) (string, error) {
	if c.DatabaseSecretID == "" {
		return c.ResolveDatabaseURL(ctx, nil)
	}
	awsCfg, err := c.AWS(ctx)
	if err != nil {
		return "", err
	}
	return c.ResolveDatabaseURL(ctx, secretsmanager.NewFromConfig(awsCfg))
}
