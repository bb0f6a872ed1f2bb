// Package backend implements the HTTP client for the Unified Honey Engine
// backend API. All console functionality is proxied through this client; the
// console itself performs no durable storage and issues no SQL.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"uhe-console/internal/domain"
	"uhe-console/internal/middleware"
)

// Client is a typed client for the engine backend. It is safe for concurrent
// use. Ordinary calls are bounded by the configured request timeout; the
// deploy event stream is opened without a timeout and only honours context
// cancellation.
type Client struct {
	baseURL   string
	httpc     *http.Client
	streamc   *http.Client
	logger    *slog.Logger
	userAgent string
}

// New creates a Client for the given backend base URL, e.g.
// "http://engine:8000/api/v1".
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     &http.Client{Timeout: timeout},
		streamc:   &http.Client{}, // no timeout: SSE connections are long-lived
		logger:    logger.With("component", "backend"),
		userAgent: "uhe-console",
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	// Carry the console request's correlation id to the engine so one id
	// threads through both sides' logs.
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and decodes a 2xx JSON response into out (which may
// be nil). Non-2xx responses become domain.UpstreamError carrying the
// backend's detail message, falling back to the HTTP status text.
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		"method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// errorFromResponse turns a non-2xx backend response into an UpstreamError.
// FastAPI error bodies carry {"detail": ...}.
func errorFromResponse(resp *http.Response) error {
	detail := http.StatusText(resp.StatusCode)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
			var s string
			if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
				detail = s
			} else {
				detail = string(payload.Detail)
			}
		}
	}
	return domain.ErrUpstream(resp.StatusCode, detail)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// --- wizard / modelling ---

// LoadModalData fetches everything the wizard needs to open in one call.
func (c *Client) LoadModalData(ctx context.Context, modelIDs []string) (*domain.ModalData, error) {
	var out domain.ModalData
	body := map[string][]string{"model_ids": modelIDs}
	if err := c.post(ctx, "/dimensional-models/modal-loader", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBlueprintBindings fetches the full blueprint object for a blueprint id.
// Blueprint ids are globally unique; no source qualifier is needed.
func (c *Client) GetBlueprintBindings(ctx context.Context, blueprintID string) (*domain.Blueprint, error) {
	var out struct {
		Message     string           `json:"message"`
		BlueprintID string           `json:"blueprint_id"`
		Bindings    domain.Blueprint `json:"bindings"`
	}
	if err := c.get(ctx, "/blueprint/bindings/"+url.PathEscape(blueprintID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Bindings, nil
}

// UpdateBlueprintBindings sends a partial bindings update; only changed
// top-level fields need to be present.
func (c *Client) UpdateBlueprintBindings(ctx context.Context, blueprintID string, bindings domain.BindingsUpdate) error {
	body := map[string]interface{}{
		"blueprint_id": blueprintID,
		"bindings":     bindings,
	}
	return c.put(ctx, "/blueprint/bindings", body, nil)
}

// ListBlueprintDetails lists all blueprints with binding and deployment
// status for the blueprint catalog page.
func (c *Client) ListBlueprintDetails(ctx context.Context, source, idLike string) ([]domain.BlueprintDetail, error) {
	q := url.Values{}
	if source != "" {
		q.Set("source", source)
	}
	if idLike != "" {
		q.Set("id_like", idLike)
	}
	var out struct {
		Message    string                   `json:"message"`
		Blueprints []domain.BlueprintDetail `json:"blueprints"`
	}
	if err := c.get(ctx, "/blueprint/list/detailed", q, &out); err != nil {
		return nil, err
	}
	return out.Blueprints, nil
}

// ListDimensions lists all dimension models.
func (c *Client) ListDimensions(ctx context.Context) ([]domain.CatalogModel, error) {
	var out struct {
		Message    string                `json:"message"`
		Dimensions []domain.CatalogModel `json:"dimensions"`
	}
	if err := c.get(ctx, "/dimensional-models/dimensions", nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Dimensions {
		out.Dimensions[i].Type = "dimension"
	}
	return out.Dimensions, nil
}

// ListFacts lists all fact models.
func (c *Client) ListFacts(ctx context.Context) ([]domain.CatalogModel, error) {
	var out struct {
		Message string                `json:"message"`
		Facts   []domain.CatalogModel `json:"facts"`
	}
	if err := c.get(ctx, "/dimensional-models/facts", nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Facts {
		out.Facts[i].Type = "fact"
	}
	return out.Facts, nil
}

// DeploymentSummary fetches the dry-run manifest used to pre-seed the
// wizard's progress matrix.
func (c *Client) DeploymentSummary(ctx context.Context, modelIDs []string) (*domain.DeploymentSummary, error) {
	var wire deploymentSummaryWire
	body := map[string][]string{"model_ids": modelIDs}
	if err := c.post(ctx, "/dimensional-models/deployment-summary", body, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// DeployStaged starts a staged deployment and returns the server-sent-event
// stream. The caller owns the stream and must Close it.
func (c *Client) DeployStaged(ctx context.Context, req domain.DeployRequest) (*Stream, error) {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/dimensional-models/deploy-staged", nil, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open deploy stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}
	return NewStream(resp.Body, c.logger), nil
}

// --- source metadata ---

// ListDatabases lists all databases visible to the engine.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/sources/metadata/databases", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSchemas lists the schemas of one database.
func (c *Client) ListSchemas(ctx context.Context, db string) ([]string, error) {
	var out []string
	q := url.Values{"db": {db}}
	if err := c.get(ctx, "/sources/metadata/schemas", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTables lists the tables of one schema.
func (c *Client) ListTables(ctx context.Context, db, schema string) ([]string, error) {
	var out []string
	q := url.Values{"db": {db}, "schema": {schema}}
	if err := c.get(ctx, "/sources/metadata/tables", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListColumns lists the columns of one table with their declared types.
func (c *Client) ListColumns(ctx context.Context, db, schema, table string) ([]domain.SourceColumn, error) {
	var out struct {
		Message string                `json:"message"`
		Data    []domain.SourceColumn `json:"data"`
	}
	q := url.Values{"db": {db}, "schema": {schema}, "table": {table}}
	if err := c.get(ctx, "/sources/metadata/columns", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// --- dashboard ---

// ModellingMetrics fetches the dashboard headline figures.
func (c *Client) ModellingMetrics(ctx context.Context) (*domain.ModellingMetrics, error) {
	var out domain.ModellingMetrics
	if err := c.get(ctx, "/dashboard/modelling/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateDatabase checks that the configured output database exists with
// its required schemas.
func (c *Client) ValidateDatabase(ctx context.Context) (*domain.DatabaseValidation, error) {
	var out domain.DatabaseValidation
	if err := c.post(ctx, "/database/validate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountURL returns the Snowflake account URL for deep links.
func (c *Client) AccountURL(ctx context.Context) (string, error) {
	var out struct {
		AccountURL string `json:"account_url"`
	}
	if err := c.get(ctx, "/snowflake/account-url", nil, &out); err != nil {
		return "", err
	}
	return out.AccountURL, nil
}
