// Package cm implements the client side of the cluster manager's REST API,
// covering the one entity fetch a check needs plus the listing collections.
package cm

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/docker/go-units"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/opsgrid/check-cm/internal/config"
)

// apiPrefix pins the single REST API version this tool targets.
const apiPrefix = "/api/v1"

const maxResponseBytes = 4 * units.MiB

// Client talks to the cluster manager's REST API. One client per invocation;
// retries stay disabled at the transport level, a check fetches exactly once.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *retryablehttp.Client
	logger   zerolog.Logger
}

// New builds a Client from resolved settings. TLS material is loaded here so
// a bad CA bundle fails before any network access.
func New(settings *config.Settings, logger zerolog.Logger) (*Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if settings.TLS {
		tlsCfg := &tls.Config{}
		if settings.TLSSkipVerify {
			tlsCfg.InsecureSkipVerify = true
		}
		if settings.TLSCAFile != "" {
			pem, err := os.ReadFile(settings.TLSCAFile)
			if err != nil {
				return nil, &config.UsageError{Reason: fmt.Sprintf("read CA bundle: %v", err)}
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, &config.UsageError{Reason: fmt.Sprintf("CA bundle %s contains no PEM certificates", settings.TLSCAFile)}
			}
			tlsCfg.RootCAs = pool
		}
		transport.TLSClientConfig = tlsCfg
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.CheckRetry = func(_ context.Context, _ *http.Response, _ error) (bool, error) {
		return false, nil
	}
	client.Logger = nil
	client.HTTPClient = &http.Client{
		Timeout:   settings.Timeout,
		Transport: transport,
	}

	return &Client{
		baseURL:  settings.BaseURL(),
		user:     settings.User,
		password: settings.Password,
		http:     client,
		logger:   logger,
	}, nil
}

// ServiceState fetches the state of a service.
func (c *Client) ServiceState(ctx context.Context, cluster, service string) (string, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf("/clusters/%s/services/%s",
		url.PathEscape(cluster), url.PathEscape(service)))
	if err != nil {
		return "", err
	}
	return stringField(doc, "serviceState")
}

// RoleState fetches the state of a role along with its declared type.
func (c *Client) RoleState(ctx context.Context, cluster, service, role string) (string, string, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf("/clusters/%s/services/%s/roles/%s",
		url.PathEscape(cluster), url.PathEscape(service), url.PathEscape(role)))
	if err != nil {
		return "", "", err
	}
	state, err := stringField(doc, "roleState")
	if err != nil {
		return "", "", err
	}
	roleType, err := stringField(doc, "type")
	if err != nil {
		return "", "", err
	}
	return state, roleType, nil
}

// Clusters lists the names of all clusters.
func (c *Client) Clusters(ctx context.Context) ([]string, error) {
	return c.names(ctx, "/clusters")
}

// Services lists the names of a cluster's services.
func (c *Client) Services(ctx context.Context, cluster string) ([]string, error) {
	return c.names(ctx, fmt.Sprintf("/clusters/%s/services", url.PathEscape(cluster)))
}

// Roles lists the names of a service's roles.
func (c *Client) Roles(ctx context.Context, cluster, service string) ([]string, error) {
	return c.names(ctx, fmt.Sprintf("/clusters/%s/services/%s/roles",
		url.PathEscape(cluster), url.PathEscape(service)))
}

func (c *Client) fetch(ctx context.Context, path string) (*gabs.Container, error) {
	endpoint := c.baseURL + apiPrefix + path
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", endpoint).Msg("querying API")
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectError{Cause: transportCause(err), Timeout: isTimeout(ctx, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &ConnectError{Cause: fmt.Errorf("read response: %w", err), Timeout: isTimeout(ctx, err)}
	}
	if len(body) > maxResponseBytes {
		return nil, &FieldError{Reason: fmt.Sprintf("API response exceeds %s", units.BytesSize(maxResponseBytes))}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(resp.Status, body)}
	}

	doc, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, &FieldError{Reason: "API response is not valid JSON"}
	}
	return doc, nil
}

func (c *Client) names(ctx context.Context, path string) ([]string, error) {
	doc, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if !doc.Exists("items") {
		return nil, missingField("items")
	}
	items := doc.Path("items")
	// Children() walks object values as well, so list-ness is checked on
	// the raw value.
	if _, ok := items.Data().([]any); !ok {
		return nil, &FieldError{Field: "items", Reason: "field 'items' in the API response is not a list"}
	}
	children, _ := items.Children()
	names := make([]string, 0, len(children))
	for _, child := range children {
		name, err := stringField(child, "name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func stringField(doc *gabs.Container, name string) (string, error) {
	if !doc.Exists(name) {
		return "", missingField(name)
	}
	value, ok := doc.Path(name).Data().(string)
	if !ok {
		return "", invalidField(name)
	}
	return value, nil
}

// apiMessage digs the API's own error message out of a failure body, falling
// back to the HTTP status text.
func apiMessage(status string, body []byte) string {
	doc, err := gabs.ParseJSON(body)
	if err != nil || !doc.Exists("message") {
		return status
	}
	if msg, ok := doc.Path("message").Data().(string); ok && msg != "" {
		return msg
	}
	return status
}

// transportCause strips the retry client's giving-up wrapper so connection
// failures read as plain transport errors.
func transportCause(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
