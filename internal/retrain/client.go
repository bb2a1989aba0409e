package retrain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/logging"
)

// DefaultTimeout bounds one retraining call. Training is slow.
const DefaultTimeout = 10 * time.Minute

// Response is the service's reply to a successful retrain.
type Response struct {
	Message   string   `json:"message"`
	Params    Config   `json:"params"`
	Classes   []string `json:"classes"`
	RequestID string   `json:"-"`
}

// Labels canonicalizes the class names the model was trained on.
func (r *Response) Labels() []label.Label {
	out := make([]label.Label, len(r.Classes))
	for i, c := range r.Classes {
		out[i] = label.Canonicalize(c)
	}
	return out
}

// Retrainer submits one retraining request.
type Retrainer interface {
	Retrain(ctx context.Context, cfg Config) (*Response, error)
}

// Client talks to the retraining endpoint of the classification service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client for the service at baseURL. A non-positive
// timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL is the service root the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

// Retrain validates cfg and posts it to <base>/retrain. It never retries;
// a failure leaves nothing to roll back.
func (c *Client) Retrain(ctx context.Context, cfg Config) (*Response, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + "/retrain"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)

	log := logging.FromContext(ctx)
	log.Debug("retrain request", "endpoint", endpoint, "request_id", reqID,
		"learning_rate", cfg.LearningRate, "n_estimators", cfg.NEstimators,
		"max_depth", cfg.MaxDepth, "threshold", cfg.Threshold)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RetrainError{RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	if id := extractRequestID(resp); id != "" {
		reqID = id
	}
	log.Debug("retrain response", "request_id", reqID, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		rerr := &RetrainError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(body),
			RequestID:  reqID,
		}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := parseRetryAfterSeconds(ra); err == nil && secs > 0 {
				rerr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, rerr
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RetrainError{StatusCode: resp.StatusCode, Status: resp.Status, RequestID: reqID,
			Err: fmt.Errorf("decode response: %w", err)}
	}
	out.RequestID = reqID
	return &out, nil
}

// errorMessage pulls a human-readable message out of an error body. The
// service answers {"error": "..."}; its framework answers validation
// failures with {"detail": [...]}.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"error.message", "error", "detail.0.msg", "detail", "message"} {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

func extractRequestID(resp *http.Response) string {
	for _, k := range []string{"X-Request-Id", "X-Correlation-Id"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// parseRetryAfterSeconds accepts delay seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}
