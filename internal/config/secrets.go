// Package config provides configuration management for the odds aggregator.
package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	errLoadAWSConfig           = "failed to load AWS config: %w"
	errGetSecretFromAWSSecrets = "failed to get secret from AWS Secrets Manager: %w"
	errParseSecretJSON         = "failed to parse secret JSON: %w"
	errNoSecretDataFound       = "no secret data found in AWS Secrets Manager"
)

// SecretsOverlay represents the structure of secrets stored in AWS Secrets
// Manager. Provider API keys and the database password never live in the
// YAML config in production.
type SecretsOverlay struct {
	DatabasePassword  string `json:"database_password"`
	PrimaryOddsAPIKey string `json:"primary_odds_api_key"`
	SportsDataAPIKey  string `json:"sportsdata_api_key"`
	ArbitrageAPIKey   string `json:"arbitrage_api_key"`
}

// LoadSecretsFromAWS fetches secrets from AWS Secrets Manager and overlays
// them onto the configuration.
func LoadSecretsFromAWS(cfg *Config, region, secretName string) error {
	secrets, err := fetchSecretsFromAWS(context.Background(), region, secretName)
	if err != nil {
		return err
	}

	if secrets.DatabasePassword != "" {
		cfg.Database.Password = secrets.DatabasePassword
	}
	applyProviderKey(cfg, "primary_odds", secrets.PrimaryOddsAPIKey)
	applyProviderKey(cfg, "sportsdata", secrets.SportsDataAPIKey)
	applyProviderKey(cfg, "arbitrage", secrets.ArbitrageAPIKey)

	return nil
}

func applyProviderKey(cfg *Config, name, key string) {
	if key == "" {
		return
	}
	if p := cfg.ProviderByName(name); p != nil {
		p.APIKey = key
	}
}

// fetchSecretsFromAWS retrieves secrets from AWS Secrets Manager
func fetchSecretsFromAWS(ctx context.Context, region string, secretName string) (*SecretsOverlay, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf(errLoadAWSConfig, err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := client.GetSecretValue(ctx, input)
	if err != nil {
		return nil, fmt.Errorf(errGetSecretFromAWSSecrets, err)
	}

	return parseSecretData(result)
}

// parseSecretData parses secret data from AWS response
func parseSecretData(result *secretsmanager.GetSecretValueOutput) (*SecretsOverlay, error) {
	var secrets SecretsOverlay

	switch {
	case result.SecretString != nil:
		if err := json.Unmarshal([]byte(*result.SecretString), &secrets); err != nil {
			return nil, fmt.Errorf(errParseSecretJSON, err)
		}
	case len(result.SecretBinary) > 0:
		if err := json.Unmarshal(result.SecretBinary, &secrets); err != nil {
			return nil, fmt.Errorf(errParseSecretJSON, err)
		}
	default:
		return nil, fmt.Errorf(errNoSecretDataFound)
	}

	return &secrets, nil
}
