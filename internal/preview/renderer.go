package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"docvault/internal/domain"
)

// Renderer converts office-document bytes to PDF. The conversion service
// is an external collaborator; failures never abort the mutation that
// triggered a preview refresh.
type Renderer interface {
	Convert(ctx context.Context, src []byte, sourceFormat string) ([]byte, error)
}

// HTTPRenderer calls a remote rendering service over HTTP with a bounded
// timeout, degrading to a conversion error rather than hanging the
// request.
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRenderer creates a renderer client against the given endpoint.
func NewHTTPRenderer(endpoint string, timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Convert posts the source bytes and returns the rendered PDF.
func (r *HTTPRenderer) Convert(ctx context.Context, src []byte, sourceFormat string) ([]byte, error) {
	if r.endpoint == "" {
		return nil, &domain.ConversionError{Message: "rendering service not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(src))
	if err != nil {
		return nil, &domain.ConversionError{Message: "failed to build conversion request", Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Source-Format", sourceFormat)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.ConversionError{Message: "rendering service unreachable or timed out", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ConversionError{
			Message: fmt.Sprintf("rendering service returned status %d", resp.StatusCode),
		}
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ConversionError{Message: "failed to read rendered output", Err: err}
	}

	return pdf, nil
}
