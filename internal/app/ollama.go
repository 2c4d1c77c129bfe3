package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"docqa/internal/logger"
)

// ensureOllamaModels pulls any of models the Ollama server does not have.
func ensureOllamaModels(ctx context.Context, baseURL string, models ...string) error {
	log := logger.FromContext(ctx)
	baseURL = strings.TrimSuffix(baseURL, "/")

	available, err := ollamaTags(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("ollama is not running or not reachable at %s: %w", baseURL, err)
	}

	for _, model := range models {
		if hasModel(available, model) {
			log.Debug("Model is available", "model", model)
			continue
		}
		log.Info("Model not found, pulling", "model", model)
		body, _ := json.Marshal(map[string]any{"name": model, "stream": false})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/pull", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to pull model %s: %w", model, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to pull model %s: status %d", model, resp.StatusCode)
		}
		log.Info("Model pulled", "model", model)
	}
	return nil
}

func ollamaTags(ctx context.Context, baseURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// hasModel matches "name" against "name" or "name:tag".
func hasModel(available []string, model string) bool {
	for _, name := range available {
		if name == model || strings.HasPrefix(name, model+":") {
			return true
		}
	}
	return false
}
