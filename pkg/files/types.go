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

// Package files is a client for the provider's Files API: uploading
// bytes once and referencing the resulting file id from later tool
// calls and message content blocks, instead of re-sending the same
// attachment on every turn. Every request carries the
// files-api-2025-04-14 beta header, since this surface is still beta.
package files

// File describes one uploaded file as the provider reports it.
type File struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mime_type"`
	SizeBytes    uint64 `json:"size_bytes"`
	CreatedAt    string `json:"created_at"`
	Downloadable bool   `json:"downloadable"`
}

// ListResponse is one page of List results.
type ListResponse struct {
	Data    []File  `json:"data"`
	HasMore bool    `json:"has_more"`
	FirstID *string `json:"first_id"`
	LastID  *string `json:"last_id"`
}

// ListOptions paginates List; a zero value lists the first page with
// the provider's default page size.
type ListOptions struct {
	Limit   int
	AfterID string
}
