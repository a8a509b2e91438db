package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxAssetBytes caps prompt downloads; TTS clips are small.
const maxAssetBytes = 32 << 20

// ResolveRef turns a server-relative audio reference into an absolute URL.
func (c *Client) ResolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty asset reference")
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse asset reference %q: %w", ref, err)
	}
	if parsed.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", c.baseURL, err)
	}
	return base.ResolveReference(parsed).String(), nil
}

// FetchAsset downloads one prompt audio asset.
func (c *Client) FetchAsset(ctx context.Context, ref string) ([]byte, error) {
	resolved, err := c.ResolveRef(ref)
	if err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := c.newRequest(attemptCtx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %q: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch asset %q: server responded %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read asset %q: %w", ref, err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset %q exceeds %d bytes", ref, maxAssetBytes)
	}
	return data, nil
}
