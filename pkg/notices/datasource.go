package notices

//go:generate mockgen -source=./datasource.go --destination=./datasource_mock_test.go --package=notices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/klothoplatform/cdk-notices/pkg/closenicely"
)

const (
	DefaultNoticesURL = "https://cli.cdk.dev-tools.aws.dev/notices.json"

	// DefaultFetchTimeout bounds both establishing the connection and receiving the whole response.
	DefaultFetchTimeout = 3 * time.Second
)

type (
	DataSource interface {
		Fetch(ctx context.Context) ([]Notice, error)
	}

	// FetchError is returned by WebsiteDataSource for any failure to retrieve a well-formed notices document.
	FetchError struct {
		Message string
		Cause   error
	}

	WebsiteDataSource struct {
		URL            string
		ConnectTimeout time.Duration
		Timeout        time.Duration
	}
)

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func (ds *WebsiteDataSource) url() string {
	if ds.URL == "" {
		return DefaultNoticesURL
	}
	return ds.URL
}

func (ds *WebsiteDataSource) timeouts() (connect, total time.Duration) {
	connect, total = ds.ConnectTimeout, ds.Timeout
	if total <= 0 {
		total = DefaultFetchTimeout
	}
	if connect <= 0 || connect > total {
		connect = total
	}
	return connect, total
}

func (ds *WebsiteDataSource) client() *httpclient.Client {
	connect, total := ds.timeouts()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect}).DialContext
	transport.TLSHandshakeTimeout = connect
	return httpclient.NewClient(
		httpclient.WithHTTPClient(&http.Client{Transport: transport, Timeout: total}),
		httpclient.WithRetryCount(0),
	)
}

// Fetch downloads the notices document. It does not retry.
func (ds *WebsiteDataSource) Fetch(ctx context.Context) ([]Notice, error) {
	_, total := ds.timeouts()
	ctx, cancel := context.WithTimeout(ctx, total)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ds.url(), nil)
	if err != nil {
		return nil, &FetchError{Message: "Failed to fetch notices", Cause: err}
	}
	res, err := ds.client().Do(req)
	if res != nil {
		defer closenicely.OrDebug(ctx, res.Body)
	}
	switch {
	case timedOut(ctx, err):
		return nil, &FetchError{Message: "Failed to fetch notices: request timed out"}
	case res != nil && res.StatusCode != http.StatusOK:
		return nil, &FetchError{Message: fmt.Sprintf("Failed to fetch notices. Status code: %d", res.StatusCode)}
	case err != nil:
		return nil, &FetchError{Message: "Failed to fetch notices", Cause: err}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		if timedOut(ctx, err) {
			return nil, &FetchError{Message: "Failed to fetch notices: request timed out"}
		}
		return nil, &FetchError{Message: "Failed to fetch notices", Cause: err}
	}
	return parseNotices(body)
}

func parseNotices(body []byte) ([]Notice, error) {
	var document map[string]json.RawMessage
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, &FetchError{Message: "Failed to parse notices", Cause: err}
	}
	raw, ok := document["notices"]
	if !ok {
		return nil, &FetchError{Message: "Failed to parse notices: 'notices' key is missing"}
	}
	var notices []Notice
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil, &FetchError{Message: "Failed to parse notices", Cause: err}
	}
	return notices, nil
}

// timedOut reports whether err came from the request deadline. The heimdall client flattens transport errors into
// strings, so the context is the reliable signal and the message is the fallback.
func timedOut(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
