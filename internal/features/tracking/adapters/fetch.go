package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"packtrack/internal/features/tracking/domain"
)

// fetchBody performs a single GET against a carrier endpoint and returns the
// raw body. One request, no retries; retry policy belongs to the caller.
func fetchBody(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("carrier returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// statusFromDelivery maps the presence of a delivery timestamp to a status.
func statusFromDelivery(deliveredAt *time.Time) domain.PackageStatus {
	if deliveredAt != nil {
		return domain.StatusDelivered
	}
	return domain.StatusInTransit
}
