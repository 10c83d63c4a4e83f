package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls an image-embedding inference endpoint over HTTP. The image
// is re-encoded as JPEG and sent base64-encoded in a JSON body; the service
// answers with the embedding vector.
type Client struct {
	URL        string
	Model      string
	HTTPClient *http.Client
}

// Ensure Client implements Embedder at compile time.
var _ Embedder = (*Client)(nil)

// NewClient creates an embedding client for the given endpoint. timeout
// bounds each request so a slow model server cannot stall ingestion
// indefinitely.
func NewClient(url, model string, timeout time.Duration) *Client {
	return &Client{
		URL:        url,
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// embedRequest is the JSON request body for the embeddings endpoint.
type embedRequest struct {
	Image string `json:"image"`
	Model string `json:"model,omitempty"`
}

// embedResponse is the JSON response from the embeddings endpoint.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed sends the image to the inference endpoint and returns the vector.
func (c *Client) Embed(ctx context.Context, img image.Image) ([]float32, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encoding image for embedding: %w", err)
	}

	endpoint := c.URL
	if !strings.HasSuffix(endpoint, "/v1/embeddings") {
		endpoint = strings.TrimRight(endpoint, "/") + "/v1/embeddings"
	}

	body, err := json.Marshal(embedRequest{
		Image: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Model: c.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var embResp embedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("parsing embedding response: %w", err)
	}

	if len(embResp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contained no vector")
	}

	return embResp.Embedding, nil
}
