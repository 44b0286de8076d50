// Package categorizer talks to the optional category prediction service.
// The service receives the uploaded ledger as CSV text and answers with the
// same rows, each carrying a predicted category.
package categorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/finsight/pkg/models"
	"github.com/yurifrl/finsight/pkg/normalize"
)

const predictPath = "/api/predict_category_csv"

const DefaultTimeout = 30 * time.Second

var ErrNoBaseURL = errors.New("categorizer base url is empty")

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

type predictRequest struct {
	CSV     string `json:"csv"`
	Retrain bool   `json:"retrain"`
}

type predictResponse struct {
	Rows  []map[string]any `json:"rows"`
	Error string           `json:"error"`
}

// Predict submits csvText and returns the predicted rows in input order.
func (c *Client) Predict(ctx context.Context, csvText string) ([]models.RawRow, error) {
	payload, err := json.Marshal(predictRequest{CSV: csvText})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting category predictions", "url", req.URL.String(), "bytes", len(payload))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("categorizer request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("categorizer error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode categorizer response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("categorizer error: %s", parsed.Error)
	}

	rows := make([]models.RawRow, 0, len(parsed.Rows))
	for _, r := range parsed.Rows {
		rows = append(rows, models.RowFromAny(r))
	}
	return rows, nil
}

// Fill copies predicted categories into rows that have none, matching rows
// by position. It returns how many rows were filled.
func Fill(rows []models.RawRow, predicted []models.RawRow) int {
	filled := 0
	for i, row := range rows {
		if i >= len(predicted) {
			break
		}
		if row.Has(normalize.CategoryKeys...) {
			continue
		}
		label, ok := predicted[i].Lookup(normalize.CategoryKeys...)
		if !ok {
			continue
		}
		row[categoryColumn(row)] = label
		filled++
	}
	return filled
}

func categoryColumn(row models.RawRow) string {
	for _, k := range normalize.CategoryKeys {
		if _, ok := row[k]; ok {
			return k
		}
	}
	return normalize.CategoryKeys[0]
}
