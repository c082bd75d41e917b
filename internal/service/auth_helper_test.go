package service

import (
	"encoding/base64"
	"testing"
)

func TestDecodeCredentials(t *testing.T) {
	jsonKey := `{"type":"service_account","client_email":"svc@example.iam.gserviceaccount.com"}`

	t.Run("raw json", func(t *testing.T) {
		got, err := decodeCredentials(jsonKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != jsonKey {
			t.Fatalf("raw JSON should pass through unchanged")
		}
	})

	t.Run("base64", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte(jsonKey))
		got, err := decodeCredentials(encoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != jsonKey {
			t.Fatalf("expected decoded JSON, got %q", got)
		}
	})

	t.Run("base64 of non-json", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("not json"))
		if _, err := decodeCredentials(encoded); err == nil {
			t.Fatalf("expected error for non-JSON payload")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := decodeCredentials("%%%not base64%%%"); err == nil {
			t.Fatalf("expected error for undecodable input")
		}
	})
}
