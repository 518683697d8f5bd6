package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rowguard/rowguard-go/routes"
)

// StorageClient exposes the object storage plane.
type StorageClient struct {
	client *Client
}

// ObjectInfo describes a stored object as returned by list operations.
type ObjectInfo struct {
	Name      string         `json:"name"`
	ID        string         `json:"id"`
	UpdatedAt string         `json:"updated_at"`
	Metadata  map[string]any `json:"metadata"`
}

func objectPath(bucket, path string) string {
	return routes.StorageObject + "/" + bucket + "/" + strings.TrimPrefix(path, "/")
}

// Upload stores data at bucket/path. An empty contentType defaults to
// application/octet-stream.
func (s *StorageClient) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if bucket == "" || path == "" {
		return fmt.Errorf("backend: bucket and path required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req, err := s.client.newRequest(ctx, http.MethodPost, objectPath(bucket, path), bytes.NewReader(data), contentType)
	if err != nil {
		return err
	}
	return s.client.sendJSON(req, nil)
}

// Download fetches the object at bucket/path.
func (s *StorageClient) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	req, err := s.client.newRequest(ctx, http.MethodGet, objectPath(bucket, path), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := s.client.send(req)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // best-effort cleanup on return
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// List returns objects in bucket under prefix.
func (s *StorageClient) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	payload := map[string]any{"prefix": prefix}
	req, err := s.client.newJSONRequest(ctx, http.MethodPost, routes.StorageObjectList+"/"+bucket, payload)
	if err != nil {
		return nil, err
	}
	var objects []ObjectInfo
	if err := s.client.sendJSON(req, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// Remove deletes the named objects from bucket.
func (s *StorageClient) Remove(ctx context.Context, bucket string, paths []string) error {
	payload := map[string]any{"prefixes": paths}
	req, err := s.client.newJSONRequest(ctx, http.MethodDelete, routes.StorageObject+"/"+bucket, payload)
	if err != nil {
		return err
	}
	return s.client.sendJSON(req, nil)
}
