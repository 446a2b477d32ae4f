package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// WhatsAppSecret represents the credential secret stored in AWS Secrets Manager.
type WhatsAppSecret struct {
	PhoneNumberID string `json:"phone_number_id"`
	AccessToken   string `json:"access_token"`
	APIVersion    string `json:"api_version,omitempty"`
}

// SecretsManagerClient wraps AWS Secrets Manager operations.
type SecretsManagerClient struct {
	client *secretsmanager.Client
}

// NewSecretsManagerClient creates a new Secrets Manager client.
// It automatically loads AWS credentials from the execution role.
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SecretsManagerClient{
		client: secretsmanager.NewFromConfig(cfg),
	}, nil
}

// GetWhatsAppSecret fetches and parses WhatsApp credentials from Secrets Manager.
func (c *SecretsManagerClient) GetWhatsAppSecret(ctx context.Context, secretName string) (*WhatsAppSecret, error) {
	if secretName == "" {
		return nil, fmt.Errorf("secret name is empty")
	}

	output, err := c.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch secret %q from secrets manager: %w", secretName, err)
	}

	if output.SecretString == nil {
		return nil, fmt.Errorf("secret %q has no string value (binary secrets not supported)", secretName)
	}

	var secret WhatsAppSecret
	if err := json.Unmarshal([]byte(*output.SecretString), &secret); err != nil {
		return nil, fmt.Errorf("parse secret %q as JSON: %w", secretName, err)
	}

	if secret.PhoneNumberID == "" {
		return nil, fmt.Errorf("secret %q missing required field: phone_number_id", secretName)
	}
	if secret.AccessToken == "" {
		return nil, fmt.Errorf("secret %q missing required field: access_token", secretName)
	}

	return &secret, nil
}

// Apply copies the secret values into the WhatsApp settings. A version stored
// in the secret wins over the configured one.
func (s *WhatsAppSecret) Apply(settings *WhatsAppSettings) {
	settings.PhoneNumberID = s.PhoneNumberID
	settings.AccessToken = s.AccessToken
	if s.APIVersion != "" {
		settings.APIVersion = s.APIVersion
	}
}
