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

func TestCreateCommand_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/api/stores" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var reqBody map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if reqBody["name"] != "test-store" {
			t.Errorf("expected name=test-store, got %v", reqBody["name"])
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"store": map[string]string{"id": "store-aaaa1111", "name": "test-store", "status": "queued"},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create", "--name", "test-store"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "Store queued") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "store-aaaa1111") {
		t.Errorf("expected store ID in output, got: %s", output)
	}
}

func TestCreateCommand_MissingName(t *testing.T) {
	resetViper()
	createCmd.Flags().Set("name", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called when validation fails")
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "--name is required") {
		t.Errorf("expected name required error, got: %s", output)
	}
}

func TestCreateCommand_ServerError(t *testing.T) {
	resetViper()
	createCmd.Flags().Set("name", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "QUOTA_EXCEEDED", "message": "store quota exceeded"},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create", "--name", "test-store"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "QUOTA_EXCEEDED") {
		t.Errorf("expected error code in output, got: %s", output)
	}
}
