// Package airtable implements the record store on top of the Airtable REST API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/remote"
)

const (
	serviceName = "airtable"

	DefaultBaseURL = "https://api.airtable.com/v0"
	DefaultTimeout = 30 * time.Second
)

// Options configures the client.
type Options struct {
	BaseURL string
	BaseID  string
	Token   string
	Timeout time.Duration
}

// Client talks to one Airtable base.
type Client struct {
	baseURL string
	baseID  string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates an Airtable record store client.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.BaseID == "" {
		return nil, errors.New("airtable base id is required")
	}

	if opts.Token == "" {
		return nil, errors.New("airtable token is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseID:  opts.BaseID,
		token:   opts.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("module", "airtable"),
	}, nil
}

type listResponse struct {
	Records []*persistence.Record `json:"records"`
	Offset  string                `json:"offset"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// List returns every record matching opts, following Airtable's offset pagination.
func (c *Client) List(ctx context.Context, table string, opts persistence.ListOptions) ([]*persistence.Record, error) {
	if table == "" {
		return nil, persistence.NewRecordError("List", table, "", persistence.ErrInvalidTable)
	}

	err := opts.Filter.Validate()
	if err != nil {
		return nil, persistence.NewRecordError("List", table, "", err)
	}

	var (
		records []*persistence.Record
		offset  string
	)

	for {
		params := listParams(opts, offset)

		var page listResponse

		err := c.do(ctx, "List", http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil, &page)
		if err != nil {
			return nil, err
		}

		records = append(records, page.Records...)
		c.logger.DebugContext(ctx, "Fetched records page", "table", table, "count", len(page.Records))

		if page.Offset == "" || (opts.MaxRecords > 0 && len(records) >= opts.MaxRecords) {
			break
		}

		offset = page.Offset
	}

	if opts.MaxRecords > 0 && len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}

	return records, nil
}

func (c *Client) Get(ctx context.Context, table, id string) (*persistence.Record, error) {
	var record persistence.Record

	err := c.do(ctx, "Get", http.MethodGet, c.recordURL(table, id), nil, &record)
	if err != nil {
		return nil, notFound("Get", table, id, err)
	}

	return &record, nil
}

func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*persistence.Record, error) {
	var record persistence.Record

	err := c.do(ctx, "Create", http.MethodPost, c.tableURL(table), map[string]any{"fields": fields}, &record)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Update patches fields; nil values are sent as null, which Airtable treats as clearing the cell.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any) (*persistence.Record, error) {
	var record persistence.Record

	err := c.do(ctx, "Update", http.MethodPatch, c.recordURL(table, id), map[string]any{"fields": fields}, &record)
	if err != nil {
		return nil, notFound("Update", table, id, err)
	}

	return &record, nil
}

func (c *Client) Delete(ctx context.Context, table, id string) (*persistence.Record, error) {
	var deleted deleteResponse

	err := c.do(ctx, "Delete", http.MethodDelete, c.recordURL(table, id), nil, &deleted)
	if err != nil {
		return nil, notFound("Delete", table, id, err)
	}

	return &persistence.Record{ID: deleted.ID}, nil
}

// HealthCheck is a no-op: Airtable has no cheap ping endpoint scoped to a base.
func (c *Client) HealthCheck(_ context.Context) error {
	return nil
}

func (c *Client) Close(_ context.Context) error {
	c.http.CloseIdleConnections()

	return nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) recordURL(table, id string) string {
	return c.tableURL(table) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body any, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.Wrap(serviceName, op, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.Wrap(serviceName, op, err)
	}

	var envelope errorEnvelope
	_ = json.Unmarshal(data, &envelope)

	if resp.StatusCode >= http.StatusBadRequest || (len(envelope.Error) > 0 && string(envelope.Error) != "null") {
		detail := string(envelope.Error)
		if detail == "" || detail == "null" {
			detail = strings.TrimSpace(string(data))
		}

		return remote.New(serviceName, op, resp.StatusCode, detail)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return remote.Wrap(serviceName, op, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

func listParams(opts persistence.ListOptions, offset string) url.Values {
	params := url.Values{}

	if formula := Formula(opts.Filter); formula != "" {
		params.Set("filterByFormula", formula)
	}

	for i, s := range opts.Sort {
		direction := s.Direction
		if direction == "" {
			direction = persistence.SortAsc
		}

		params.Set("sort["+strconv.Itoa(i)+"][field]", s.Field)
		params.Set("sort["+strconv.Itoa(i)+"][direction]", string(direction))
	}

	if opts.MaxRecords > 0 {
		params.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}

	if offset != "" {
		params.Set("offset", offset)
	}

	return params
}

func notFound(op, table, id string, err error) error {
	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusNotFound {
		return persistence.NewRecordError(op, table, id, errors.Join(persistence.ErrRecordNotFound, remoteErr))
	}

	return err
}
