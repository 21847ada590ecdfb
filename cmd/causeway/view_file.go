package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/V4T54L/causeway/internal/usecase"
)

// loadViewFile reads a YAML view description, e.g.
//
//	hidden_hosts: [proxy]
//	highlight_hosts: [client]
//	query: 'status = /5../'
//	collapse_threshold: 3
func loadViewFile(path string) (usecase.ViewRequest, error) {
	var req usecase.ViewRequest
	raw, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read view file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("parse view file %s: %w", path, err)
	}
	return req, nil
}
