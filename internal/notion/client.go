package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

// MaxPageSize is the largest page the upstream accepts per query.
const MaxPageSize = 100

// Client talks to the hosted database/document API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	version    string
	log        zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a client for baseURL using token for authorization and
// pinning the given API version.
func NewClient(baseURL, token, version string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		token:      token,
		version:    version,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RetrieveDatabase fetches collection metadata, including its declared
// data sources.
func (c *Client) RetrieveDatabase(ctx context.Context, id string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+url.PathEscape(id), nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryDataSource fetches the first page of records from a data source.
// pageSize is capped at MaxPageSize; values below one fall back to it.
func (c *Client) QueryDataSource(ctx context.Context, dataSourceID string, pageSize int) (*QueryResult, error) {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	body := map[string]any{"page_size": pageSize}
	var result QueryResult
	if err := c.do(ctx, http.MethodPost, "/v1/data_sources/"+url.PathEscape(dataSourceID)+"/query", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetrievePage fetches a single record or document node by identifier.
// The upstream identifier space is global, so no collection is needed.
func (c *Client) RetrievePage(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListBlockChildren fetches one page of a block's or page's immediate
// children. cursor may be empty for the first page.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string, pageSize int, cursor string) (*BlockChildren, error) {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(pageSize))
	if cursor != "" {
		query.Set("start_cursor", cursor)
	}
	var children BlockChildren
	path := "/v1/blocks/" + url.PathEscape(blockID) + "/children?" + query.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &children); err != nil {
		return nil, err
	}
	return &children, nil
}

// apiError matches the upstream's error body.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindUpstream, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUpstream, Message: "decode response: " + err.Error()}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	apiErr := apiError{Status: resp.StatusCode}
	_ = json.Unmarshal(raw, &apiErr)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	kind := KindUpstream
	if resp.StatusCode == http.StatusNotFound || apiErr.Code == "object_not_found" {
		kind = KindNotFound
	}
	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("code", apiErr.Code).
		Str("kind", string(kind)).
		Msg("upstream error")
	return &Error{Kind: kind, Code: apiErr.Code, Message: apiErr.Message}
}
