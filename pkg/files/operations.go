// Copyright 2026 The Agentrun Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kaidrach/agentrun/pkg/errs"
)

// Upload sends data as a new file named filename with the given MIME
// type, returning the provider's File record. Unlike the upstream
// client, there is no separate from-path variant: callers read the
// file themselves and pass the bytes, keeping this client free of
// filesystem assumptions about where an agent's attachments live.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, data []byte) (*File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("files: build multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("files: write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("files: close multipart writer: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "", body.Bytes(), writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out File
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one file's metadata.
func (c *Client) Get(ctx context.Context, fileID string) (*File, error) {
	resp, err := c.do(ctx, http.MethodGet, "/"+fileID, nil, "")
	if err != nil {
		return nil, err
	}
	var out File
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches a file's raw bytes along with its content type.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/"+fileID+"/content", nil, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &errs.NetworkError{Transport: "http", Err: err}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// Delete removes a file. The provider returns an empty body on
// success, so this discards the response rather than decoding it.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/"+fileID, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return statusError(resp)
}

// List returns one page of files, honoring opts.Limit and opts.AfterID
// as the ?limit=&after_id= query parameters.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.AfterID != "" {
		query.Set("after_id", opts.AfterID)
	}
	path := ""
	if encoded := query.Encode(); encoded != "" {
		path = "?" + encoded
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	var out ListResponse
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll pages through every file, 100 at a time, and returns them in
// one slice. Prefer List directly when a caller wants to stop early.
func (c *Client) ListAll(ctx context.Context) ([]File, error) {
	var all []File
	afterID := ""
	for {
		page, err := c.List(ctx, ListOptions{Limit: 100, AfterID: afterID})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore || page.LastID == nil {
			return all, nil
		}
		afterID = *page.LastID
	}
}
