// Package store persists normalized records through the Supabase REST API.
// All writes are idempotent: existing transaction ids are looked up first and
// only unseen records are inserted.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"investflow/ibkr-csv/internal/cashreport"
	"investflow/ibkr-csv/internal/trades"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// chunkSize bounds the ids placed in one in.(...) filter so the request URL
// stays well below server limits.
const chunkSize = 20

const cashReportsTable = "cash_reports"

// Client is a Supabase REST client scoped to one project.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for the given Supabase project URL and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// UpsertBatch inserts the records whose transaction id is not yet present in
// the table and returns how many were newly inserted. A failing chunk is
// logged and skipped; the remaining chunks are still attempted.
func (c *Client) UpsertBatch(ctx context.Context, table string, records []trades.Record, ids []string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var lastErr error
	total := 0
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}

		existing, err := c.existingIDs(ctx, table, "transaction_id", ids[start:end])
		if err != nil {
			log.WithError(err).WithField("table", table).Error("Error checking transactions in Supabase")
			lastErr = err
			continue
		}

		var fresh []trades.Record
		for i, rec := range records[start:end] {
			if !existing[ids[start+i]] {
				fresh = append(fresh, rec)
			}
		}
		if len(fresh) == 0 {
			log.WithField("table", table).Debug("Chunk already exists, skipping")
			continue
		}

		if err := c.insert(ctx, table, fresh); err != nil {
			log.WithError(err).WithField("table", table).Error("Error inserting batch into Supabase")
			lastErr = err
			continue
		}
		total += len(fresh)
	}

	if total > 0 {
		log.WithFields(logrus.Fields{
			"table":    table,
			"inserted": total,
		}).Info("Inserted records into Supabase")
	}
	return total, lastErr
}

// PersistCashEntries stores ending cash balances, deduplicated by the
// composite key report_date:currency.
func (c *Client) PersistCashEntries(ctx context.Context, entries []cashreport.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	// All entries of one run share the statement date.
	date := entries[0].Date
	currencies := make([]string, len(entries))
	for i, e := range entries {
		currencies[i] = e.Currency
	}

	existing, err := c.existingIDs(ctx, cashReportsTable, "currency", currencies, "report_date=eq."+date)
	if err != nil {
		return 0, fmt.Errorf("error checking cash entries: %w", err)
	}

	var fresh []cashreport.Entry
	for _, e := range entries {
		if !existing[e.Currency] {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		log.Debug("All cash entries already persisted")
		return 0, nil
	}

	if err := c.insert(ctx, cashReportsTable, fresh); err != nil {
		return 0, fmt.Errorf("error inserting cash entries: %w", err)
	}

	log.WithField("count", len(fresh)).Info("Persisted cash entries")
	return len(fresh), nil
}

// existingIDs returns the values of column that already exist in the table
// among the given candidates. Extra raw filters are appended verbatim.
func (c *Client) existingIDs(ctx context.Context, table, column string, values []string, filters ...string) (map[string]bool, error) {
	query := url.Values{}
	query.Set("select", column)
	query.Set(column, fmt.Sprintf("in.(%s)", strings.Join(values, ",")))

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, query.Encode())
	for _, f := range filters {
		endpoint += "&" + f
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", table, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d querying %s: %s", resp.StatusCode, table, body)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("error decoding %s response: %w", table, err)
	}

	existing := make(map[string]bool, len(rows))
	for _, row := range rows {
		if v, ok := row[column].(string); ok {
			existing[v] = true
		}
	}
	return existing, nil
}

// insert posts the payload as a JSON array to the table endpoint.
func (c *Client) insert(ctx context.Context, table string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error inserting into %s: %w", table, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d inserting into %s: %s", resp.StatusCode, table, respBody)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
