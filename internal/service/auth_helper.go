package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/mnas4716/Vapi-medical-assistant/internal/config"
)

// googleScopes are the scopes every Google client in this service needs:
// the patient sheet, the appointment calendar, and read-only Drive access
// for resolving the spreadsheet by title.
var googleScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/drive.readonly",
}

// GoogleCredentials wraps the clinic's service-account credentials.
type GoogleCredentials struct {
	tokenSource oauth2.TokenSource
	email       string
}

var (
	googleCreds   *GoogleCredentials
	googleCredsMu sync.Mutex
)

// GetGoogleCredentials loads the service-account credentials (singleton).
func GetGoogleCredentials(ctx context.Context) (*GoogleCredentials, error) {
	googleCredsMu.Lock()
	defer googleCredsMu.Unlock()

	if googleCreds != nil {
		return googleCreds, nil
	}

	creds, err := loadGoogleCredentials(ctx)
	if err != nil {
		return nil, err
	}
	googleCreds = creds
	return googleCreds, nil
}

// ClientOption returns the option every google.golang.org/api client is
// constructed with.
func (c *GoogleCredentials) ClientOption() option.ClientOption {
	return option.WithTokenSource(c.tokenSource)
}

// Email returns the service account email, for logging and diagnostics.
func (c *GoogleCredentials) Email() string {
	return c.email
}

// loadGoogleCredentials reads the service-account JSON from the
// GOOGLE_CREDENTIALS_JSON environment variable (base64-encoded or raw JSON),
// falling back to the Secret Manager secret of the same name.
func loadGoogleCredentials(ctx context.Context) (*GoogleCredentials, error) {
	raw := strings.TrimSpace(os.Getenv(config.SecretGoogleCredentials))
	if raw != "" {
		log.Println("Google credentials loaded from environment variable")
	} else {
		raw = loadCredentialsFromSecretManager(ctx)
	}

	if raw == "" {
		return nil, fmt.Errorf("%s not set", config.SecretGoogleCredentials)
	}

	jsonKey, err := decodeCredentials(raw)
	if err != nil {
		return nil, err
	}

	jwtConf, err := google.JWTConfigFromJSON(jsonKey, googleScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}

	return &GoogleCredentials{
		tokenSource: jwtConf.TokenSource(ctx),
		email:       jwtConf.Email,
	}, nil
}

// loadCredentialsFromSecretManager fetches the credentials secret, returning
// "" on any failure so the caller can report a single missing-credentials error.
func loadCredentialsFromSecretManager(ctx context.Context) string {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		log.Printf("Secret Manager unavailable: %v", err)
		return ""
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		config.GCPProjectID, config.SecretGoogleCredentials)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		log.Printf("Failed to read credentials from Secret Manager: %v", err)
		return ""
	}

	log.Println("Google credentials loaded from Secret Manager")
	return strings.TrimSpace(string(result.Payload.Data))
}

// decodeCredentials accepts either base64-encoded or raw service-account JSON.
func decodeCredentials(raw string) ([]byte, error) {
	if json.Valid([]byte(raw)) {
		return []byte(raw), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("credentials are neither valid JSON nor base64: %w", err)
	}
	if !json.Valid(decoded) {
		return nil, fmt.Errorf("decoded credentials are not valid JSON")
	}
	return decoded, nil
}
