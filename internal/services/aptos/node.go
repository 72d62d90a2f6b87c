package aptos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"

	"github.com/buger/jsonparser"
)

// NodeClient reads from a fullnode's REST API.
type NodeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNodeClient accepts the node root or its /v1 endpoint.
func NewNodeClient(nodeURL string, httpClient *http.Client) *NodeClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	base := strings.TrimRight(nodeURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return &NodeClient{baseURL: base, httpClient: httpClient}
}

func (c *NodeClient) ChainID(ctx context.Context) (uint8, error) {
	body, status, err := c.get(ctx, c.baseURL)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("ledger info returned status %d: %s", status, nodeMessage(body))
	}
	id, err := jsonparser.GetInt(body, "chain_id")
	if err != nil {
		return 0, fmt.Errorf("%w: no field \"chain_id\" in ledger info: %v", domain.ErrMalformedPayload, err)
	}
	if id <= 0 || id > 255 {
		return 0, fmt.Errorf("%w: chain_id %d out of range", domain.ErrMalformedPayload, id)
	}
	return uint8(id), nil
}

// Resource returns the raw resource document, {"type": ..., "data": {...}}.
func (c *NodeClient) Resource(ctx context.Context, account, resourceType string) ([]byte, error) {
	resourceURL := fmt.Sprintf("%s/accounts/%s/resource/%s", c.baseURL, url.PathEscape(account), url.PathEscape(resourceType))

	body, status, err := c.get(ctx, resourceURL)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s at %s: %s", domain.ErrResourceNotFound, resourceType, account, nodeMessage(body))
	default:
		return nil, fmt.Errorf("resource request returned status %d: %s", status, nodeMessage(body))
	}
}

func (c *NodeClient) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read response from %s: %w", target, err)
	}
	return body, resp.StatusCode, nil
}

func nodeMessage(body []byte) string {
	if msg, err := jsonparser.GetString(body, "message"); err == nil {
		return msg
	}
	return strings.TrimSpace(string(body))
}
