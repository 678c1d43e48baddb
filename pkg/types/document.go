// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Document records one PDF written by the fetch stage.
type Document struct {
	// Index is the article number the document was requested with.
	Index int `json:"index" yaml:"index"`

	// SourceURL is the URL the body was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Path is the local file the body was written to.
	Path string `json:"path" yaml:"path"`

	// Bytes is the size of the written body.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}
