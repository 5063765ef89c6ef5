package algolia

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// mockSecretsManagerClient implements SecretsManagerClient for testing
type mockSecretsManagerClient struct {
	secretValue *string
	err         error
	requested   []string
}

func (m *mockSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.requested = append(m.requested, aws.ToString(params.SecretId))
	if m.err != nil {
		return nil, m.err
	}

	return &secretsmanager.GetSecretValueOutput{
		SecretString: m.secretValue,
	}, nil
}

func TestAWSSecrets(t *testing.T) {
	tests := map[string]struct {
		env         string
		client      *mockSecretsManagerClient
		wantPath    string
		wantAppID   string
		wantKey     string
		wantErrText string
	}{
		"success": {
			env:       "production",
			client:    &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"test-app-id","write_api_key":"test-api-key"}`)},
			wantPath:  "production/algolia",
			wantAppID: "test-app-id",
			wantKey:   "test-api-key",
		},
		"environment_path": {
			env:       "staging",
			client:    &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"staging-app-id","write_api_key":"staging-api-key"}`)},
			wantPath:  "staging/algolia",
			wantAppID: "staging-app-id",
			wantKey:   "staging-api-key",
		},
		"get_secret_error": {
			env:         "production",
			client:      &mockSecretsManagerClient{err: errors.New("secrets manager error")},
			wantPath:    "production/algolia",
			wantErrText: "failed to get secret from AWS Secrets Manager at path production/algolia",
		},
		"nil_secret_string": {
			env:         "production",
			client:      &mockSecretsManagerClient{},
			wantPath:    "production/algolia",
			wantErrText: "secret at path production/algolia has no string value",
		},
		"invalid_json": {
			env:         "production",
			client:      &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"test-app-id","write_api_key":}`)},
			wantPath:    "production/algolia",
			wantErrText: "failed to unmarshal secret JSON at path production/algolia",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			secrets, err := AWSSecrets(context.Background(), tc.client, tc.env)()

			if len(tc.client.requested) != 1 || tc.client.requested[0] != tc.wantPath {
				t.Errorf("Expected request for %s, got %v", tc.wantPath, tc.client.requested)
			}

			if tc.wantErrText != "" {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !contains(err.Error(), tc.wantErrText) {
					t.Errorf("Expected error to contain '%s', got '%s'", tc.wantErrText, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if secrets.AppID != tc.wantAppID {
				t.Errorf("Expected AppID to be '%s', got '%s'", tc.wantAppID, secrets.AppID)
			}
			if secrets.WriteApiKey != tc.wantKey {
				t.Errorf("Expected WriteApiKey to be '%s', got '%s'", tc.wantKey, secrets.WriteApiKey)
			}
		})
	}
}

func TestAWSSecretsFromARN(t *testing.T) {
	arn := "arn:aws:secretsmanager:us-east-1:123456789012:secret:algolia-AbCdEf"
	client := &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"arn-app","write_api_key":"arn-key"}`)}

	secrets, err := AWSSecretsFromARN(context.Background(), client, arn)()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if client.requested[0] != arn {
		t.Errorf("Expected request for %s, got %s", arn, client.requested[0])
	}
	if secrets.AppID != "arn-app" || secrets.WriteApiKey != "arn-key" {
		t.Errorf("Unexpected secrets: %+v", secrets)
	}

	_, err = AWSSecretsFromARN(context.Background(), &mockSecretsManagerClient{}, arn)()
	if err == nil || !contains(err.Error(), "secret with ARN "+arn+" has no string value") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("ALGOLIA_APP_ID", "")
	t.Setenv("ALGOLIA_API_KEY", "")

	if _, err := EnvSecrets()(); err == nil {
		t.Error("Expected error when ALGOLIA_APP_ID is unset")
	}

	t.Setenv("ALGOLIA_APP_ID", "env-app")
	if _, err := EnvSecrets()(); err == nil {
		t.Error("Expected error when ALGOLIA_API_KEY is unset")
	}

	t.Setenv("ALGOLIA_API_KEY", "env-key")
	secrets, err := EnvSecrets()()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if secrets.AppID != "env-app" || secrets.WriteApiKey != "env-key" {
		t.Errorf("Unexpected secrets: %+v", secrets)
	}
}

func TestStaticSecrets(t *testing.T) {
	secrets, err := StaticSecrets("app", "key")()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := secrets.validate(); err != nil {
		t.Errorf("Expected valid secrets, got %v", err)
	}
}
