package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// yadiskAPIBase resolves a public Yandex Disk link into a direct download URL.
const yadiskAPIBase = "https://cloud-api.yandex.net/v1/disk/public/resources/download"

// DiskClient downloads files shared through public Yandex Disk links.
type DiskClient struct {
	HTTPClient *http.Client
	APIBase    string
}

// NewDiskClient constructs a DiskClient with the given HTTP client.
func NewDiskClient(httpClient *http.Client) *DiskClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DiskClient{HTTPClient: httpClient, APIBase: yadiskAPIBase}
}

// Download resolves the public link and streams the file body.
// The caller must close the returned reader.
func (d *DiskClient) Download(ctx context.Context, publicURL string) (io.ReadCloser, error) {
	href, err := d.resolve(ctx, publicURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (d *DiskClient) resolve(ctx context.Context, publicURL string) (string, error) {
	endpoint := d.APIBase + "?" + url.Values{"public_key": {publicURL}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build resolve request: %w", err)
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve disk link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolve disk link: unexpected status %s", resp.Status)
	}

	var payload struct {
		Href string `json:"href"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode resolve response: %w", err)
	}
	if payload.Href == "" {
		return "", fmt.Errorf("resolve disk link: empty download href")
	}
	return payload.Href, nil
}
