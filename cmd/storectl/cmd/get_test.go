package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestGetCommand_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stores/store-aaaa1111" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		storeURL := "http://store-aaaa1111.example.test"
		json.NewEncoder(w).Encode(map[string]any{
			"store": map[string]any{
				"id": "store-aaaa1111", "name": "alpha", "engine": "woocommerce",
				"status": "ready", "store_url": storeURL,
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"get", "store-aaaa1111"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "store-aaaa1111") || !strings.Contains(output, "ready") {
		t.Errorf("expected store details in output, got: %s", output)
	}
}

func TestGetCommand_NotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "store not found: store-missing"},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"get", "store-missing"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND in output, got: %s", stdout.String())
	}
}
