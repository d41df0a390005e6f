package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storeplane/pkg/api"
)

// StoreClient handles API calls to the storeplane controller.
type StoreClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewStoreClient creates a new client with the given base URL.
func NewStoreClient(baseURL string) *StoreClient {
	return &StoreClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError represents an error response from the controller.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

func (c *StoreClient) do(method, path string, reqBody any, okStatus ...int) ([]byte, int, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	ok := len(okStatus) == 0
	for _, s := range okStatus {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Code != "" {
			return nil, resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Code: errResp.Error.Code, Message: errResp.Error.Message}
		}
		return nil, resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, resp.StatusCode, nil
}

// CreateStore sends POST /api/stores.
func (c *StoreClient) CreateStore(req api.CreateStoreRequest) (*api.CreateStoreResponse, error) {
	body, _, err := c.do(http.MethodPost, "/api/stores", req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	var result api.CreateStoreResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// ListStores sends GET /api/stores.
func (c *StoreClient) ListStores() (*api.ListStoresResponse, error) {
	body, _, err := c.do(http.MethodGet, "/api/stores", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var result api.ListStoresResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// GetStore sends GET /api/stores/{id}.
func (c *StoreClient) GetStore(id string) (*api.GetStoreResponse, error) {
	body, _, err := c.do(http.MethodGet, "/api/stores/"+id, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var result api.GetStoreResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// DeleteStore sends DELETE /api/stores/{id}.
func (c *StoreClient) DeleteStore(id string) (*api.OperationAcceptedResponse, error) {
	body, _, err := c.do(http.MethodDelete, "/api/stores/"+id, nil, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	var result api.OperationAcceptedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// RetryStore sends POST /api/stores/{id}/retry.
func (c *StoreClient) RetryStore(id string) (*api.OperationAcceptedResponse, error) {
	body, _, err := c.do(http.MethodPost, "/api/stores/"+id+"/retry", nil, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	var result api.OperationAcceptedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// ListAudit sends GET /api/audit?limit=N.
func (c *StoreClient) ListAudit(limit int) (*api.ListAuditResponse, error) {
	body, _, err := c.do(http.MethodGet, fmt.Sprintf("/api/audit?limit=%d", limit), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var result api.ListAuditResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}
