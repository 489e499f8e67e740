package tallysync

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/clbanning/mxj/v2"
)

// documentFetcher is the transport seam between the orchestrator and the
// Tally endpoint. Tests swap in a stub.
type documentFetcher interface {
	fetch(ctx context.Context, entity EntityType, dr DateRange) (map[string]any, error)
}

type tallyClient struct {
	endpoint    string
	companyName string
	maxRetries  int
	timeouts    []time.Duration
	backoffBase time.Duration
	backoffCap  time.Duration
	http        *http.Client
	now         func() time.Time
}

func newTallyClient(endpoint, companyName string) *tallyClient {
	maxRetries := 3
	if v := strings.TrimSpace(os.Getenv("TALLY_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			maxRetries = n
		}
	}
	return &tallyClient{
		endpoint:    strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		companyName: companyName,
		maxRetries:  maxRetries,
		timeouts:    timeoutSchedule(),
		backoffBase: time.Second,
		backoffCap:  30 * time.Second,
		http:        &http.Client{},
		now:         time.Now,
	}
}

// timeoutSchedule reads TALLY_TIMEOUT_SCHEDULE as comma-separated seconds.
// Attempts past the end of the schedule reuse the last entry, so the first
// attempt fails fast and retries wait out a busy Tally instance.
func timeoutSchedule() []time.Duration {
	defaults := []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}
	raw := strings.TrimSpace(os.Getenv("TALLY_TIMEOUT_SCHEDULE"))
	if raw == "" {
		return defaults
	}
	var out []time.Duration
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return defaults
		}
		out = append(out, time.Duration(n)*time.Second)
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

func (c *tallyClient) timeoutFor(attempt int) time.Duration {
	if attempt >= len(c.timeouts) {
		return c.timeouts[len(c.timeouts)-1]
	}
	return c.timeouts[attempt]
}

func (c *tallyClient) backoffFor(attempt int) time.Duration {
	d := c.backoffBase << attempt
	if d > c.backoffCap || d <= 0 {
		return c.backoffCap
	}
	return d
}

func (c *tallyClient) fetch(ctx context.Context, entity EntityType, dr DateRange) (map[string]any, error) {
	body, err := buildExportRequest(entity, c.companyName, dr, c.now())
	if err != nil {
		return nil, err
	}

	var lastErr *TransportError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr.Attempts = attempt
				return nil, lastErr
			case <-time.After(c.backoffFor(attempt - 1)):
			}
		}
		doc, terr := c.sendOnce(ctx, body, c.timeoutFor(attempt))
		if terr == nil {
			return doc, nil
		}
		terr.Attempts = attempt + 1
		lastErr = terr
		if !terr.Retryable() {
			return nil, terr
		}
	}
	return nil, lastErr
}

func (c *tallyClient) sendOnce(ctx context.Context, body string, timeout time.Duration) (map[string]any, *TransportError) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, &TransportError{Kind: TransportUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyNetworkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyNetworkError(err)
	}
	if terr := classifyStatus(resp.StatusCode); terr != nil {
		return nil, terr
	}

	doc, err := mxj.NewMapXml(payload)
	if err != nil {
		return nil, &TransportError{Kind: TransportProtocolError, Err: err}
	}
	if lineErr := findLineError(map[string]any(doc)); lineErr != "" {
		return nil, &TransportError{Kind: TransportProtocolError, Err: errors.New(lineErr)}
	}
	return map[string]any(doc), nil
}

func classifyStatus(code int) *TransportError {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return &TransportError{Kind: TransportNotFound, Err: errors.New("endpoint returned 404")}
	case code == http.StatusUnauthorized:
		return &TransportError{Kind: TransportUnauthorized, Err: errors.New("endpoint returned 401")}
	case code == http.StatusForbidden:
		return &TransportError{Kind: TransportForbidden, Err: errors.New("endpoint returned 403")}
	case code >= 500:
		return &TransportError{Kind: TransportServerError, Err: errors.New("endpoint returned " + strconv.Itoa(code))}
	default:
		return &TransportError{Kind: TransportUnknown, Err: errors.New("endpoint returned " + strconv.Itoa(code))}
	}
}

func classifyNetworkError(err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &TransportError{Kind: TransportConnectionRefused, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Kind: TransportConnectionRefused, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &TransportError{Kind: TransportConnectionRefused, Err: err}
	}
	return &TransportError{Kind: TransportUnknown, Err: err}
}

// findLineError walks the parsed document for a LINEERROR node. Tally
// reports request failures inside a 200 response, so the body has to be
// inspected before it is trusted.
func findLineError(node any) string {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if strings.EqualFold(key, "LINEERROR") {
				if msg := NormalizeText(child); msg != "" {
					return msg
				}
				return "tally reported a line error"
			}
			if msg := findLineError(child); msg != "" {
				return msg
			}
		}
	case []any:
		for _, child := range v {
			if msg := findLineError(child); msg != "" {
				return msg
			}
		}
	}
	return ""
}
