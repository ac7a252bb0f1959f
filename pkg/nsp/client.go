package nsp

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topolab/pkg/cache"
	"github.com/matzehuels/topolab/pkg/errors"
	"github.com/matzehuels/topolab/pkg/httputil"
	"github.com/matzehuels/topolab/pkg/observability"
	"github.com/matzehuels/topolab/pkg/topo"
)

const (
	tokenPath      = "/rest-gateway/rest/api/v1/auth/token"
	revocationPath = "/rest-gateway/rest/api/v1/auth/revocation"
	topologyPath   = "/restconf/data/ietf-network:networks/network="

	tokenRequestBody = `{"grant_type":"client_credentials"}`

	defaultTimeout = 30 * time.Second
	revokeTimeout  = 10 * time.Second
)

// DefaultNetwork is the NSP network holding the Layer 2 topology.
const DefaultNetwork = "L2Topology"

// Config holds the connection settings for an NSP client.
type Config struct {
	// Server is the NSP address: a host, host:port, or full URL.
	// Bare hosts are dialed over HTTPS.
	Server string

	// Username and Password authenticate against the REST gateway.
	Username string
	Password string

	// Network is the network to fetch. Defaults to [DefaultNetwork].
	Network string

	// Proxy optionally routes requests through an HTTP proxy.
	Proxy string

	// Insecure skips TLS certificate verification. NSP installations
	// commonly run self-signed certificates.
	Insecure bool

	// Timeout bounds each HTTP request. Defaults to 30 seconds.
	Timeout time.Duration

	// Retries and RetryDelay control how transient failures (network
	// errors, 5xx responses) are retried. Defaults: 3 attempts, 1 second
	// initial delay, doubling per retry.
	Retries    int
	RetryDelay time.Duration

	// Cache optionally stores fetched topologies keyed on server and
	// network. Nil disables response caching.
	Cache cache.Cache

	// Keyer derives the cache keys. Defaults to [cache.NewDefaultKeyer].
	Keyer cache.Keyer

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Client talks to one NSP instance. Create it with [New].
type Client struct {
	base       string
	username   string
	password   string
	network    string
	http       *http.Client
	cache      cache.Cache
	keyer      cache.Keyer
	retries    int
	retryDelay time.Duration
	logger     *log.Logger
}

// New creates a client from cfg. The server address is required; all other
// fields have defaults.
func New(cfg Config) (*Client, error) {
	if cfg.Server == "" {
		return nil, errors.New(errors.ErrCodeInvalidServer, "NSP server address is required")
	}
	base := cfg.Server
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	base = strings.TrimRight(base, "/")
	if err := errors.ValidateServerURL(base); err != nil {
		return nil, err
	}
	if _, err := url.Parse(base); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidServer, err, "invalid NSP server address %q", cfg.Server)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.Proxy != "" {
		proxy := cfg.Proxy
		if !strings.Contains(proxy, "://") {
			proxy = "http://" + proxy
		}
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid proxy address %q", cfg.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	network := cfg.Network
	if network == "" {
		network = DefaultNetwork
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	keyer := cfg.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		base:       base,
		username:   cfg.Username,
		password:   cfg.Password,
		network:    network,
		http:       &http.Client{Timeout: timeout, Transport: transport},
		cache:      cfg.Cache,
		keyer:      keyer,
		retries:    retries,
		retryDelay: delay,
		logger:     logger,
	}, nil
}

// Server returns the canonical base URL the client dials.
func (c *Client) Server() string { return c.base }

// Network returns the network name the client fetches.
func (c *Client) Network() string { return c.network }

// Session is an authenticated NSP session. A session holds a bearer token
// that counts against the platform's concurrent client limit, so every
// [Client.Login] must be paired with [Session.Revoke].
type Session struct {
	client  *Client
	token   string
	revoked bool
}

// Login obtains a bearer token from the REST gateway using the configured
// Basic credentials. Callers must revoke the session when done:
//
//	sess, err := client.Login(ctx)
//	if err != nil {
//	    return err
//	}
//	defer sess.Revoke(ctx)
func (c *Client) Login(ctx context.Context) (*Session, error) {
	data, err := c.request(ctx, http.MethodPost, tokenPath, []byte(tokenRequestBody), func(req *http.Request) {
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(c.username, c.password)
	})
	if err != nil {
		return nil, err
	}

	var tok struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode token response")
	}
	if tok.AccessToken == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "token response carried no access token")
	}

	c.logger.Debug("Authenticated against NSP", "server", c.base)
	return &Session{client: c, token: tok.AccessToken}, nil
}

// Revoke invalidates the session token on the gateway. It runs even when
// the surrounding context is already cancelled, bounded by its own timeout,
// so deferred revocations still reach the platform. Revoking twice is a
// no-op.
func (s *Session) Revoke(ctx context.Context) error {
	if s.revoked {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revokeTimeout)
	defer cancel()

	form := url.Values{"token": {s.token}, "token_type_hint": {"token"}}
	c := s.client
	_, err := c.request(ctx, http.MethodPost, revocationPath, []byte(form.Encode()), func(req *http.Request) {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(c.username, c.password)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeTokenRevoked, err, "revoke NSP token")
	}

	s.revoked = true
	c.logger.Debug("Revoked NSP token", "server", c.base)
	return nil
}

// FetchTopology retrieves the configured network over RESTCONF and parses
// it into a raw topology.
func (s *Session) FetchTopology(ctx context.Context) (*topo.RawTopology, error) {
	c := s.client
	data, err := c.request(ctx, http.MethodGet, topologyPath+url.PathEscape(c.network), nil, func(req *http.Request) {
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.token)
	})
	if err != nil {
		return nil, err
	}

	raw, err := ParseTopology(data)
	if err != nil {
		return nil, err
	}
	raw.Source = c.base
	if raw.Network == "" {
		raw.Network = c.network
	}
	c.logger.Debug("Fetched topology", "network", raw.Network, "devices", len(raw.Devices), "links", len(raw.Links))
	return raw, nil
}

// FetchTopology logs in, fetches the topology, and revokes the token. The
// revocation runs on every path out, success or failure, because NSP caps
// the number of active auth clients.
func (c *Client) FetchTopology(ctx context.Context) (*topo.RawTopology, error) {
	sess, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Revoke(ctx); err != nil {
			c.logger.Warn("Failed to revoke NSP token", "error", err)
		}
	}()
	return sess.FetchTopology(ctx)
}

// FetchTopologyCached is [Client.FetchTopology] behind the configured
// cache, keyed on server and network with [cache.TTLFetch]. refresh
// bypasses the lookup and overwrites the entry. The second return value
// reports whether the topology came from cache.
func (c *Client) FetchTopologyCached(ctx context.Context, refresh bool) (*topo.RawTopology, bool, error) {
	if c.cache == nil {
		raw, err := c.FetchTopology(ctx)
		return raw, false, err
	}

	key := c.keyer.FetchKey(cache.FetchKeyOpts{Server: c.base, Network: c.network})
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if raw, err := topo.UnmarshalRaw(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "fetch")
				return raw, true, nil
			}
			c.logger.Debug("Ignoring undecodable cache entry", "key", key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "fetch")

	raw, err := c.FetchTopology(ctx)
	if err != nil {
		return nil, false, err
	}
	if data, err := topo.MarshalRaw(raw); err == nil {
		if err := c.cache.Set(ctx, key, data, cache.TTLFetch); err != nil {
			c.logger.Debug("Cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "fetch", len(data))
		}
	}
	return raw, false, nil
}

// request performs one HTTP exchange with retries. The request is rebuilt
// on every attempt so the body reader starts fresh.
func (c *Client) request(ctx context.Context, method, path string, body []byte, set func(*http.Request)) ([]byte, error) {
	var data []byte
	err := httputil.Retry(ctx, c.retries, c.retryDelay, func() error {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
		if err != nil {
			return err
		}
		set(req)
		data, err = c.do(req)
		return err
	})
	return data, err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	observability.HTTP().OnRequest(req.Context(), req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(req.Context(), req.Method, req.URL.Host, req.URL.Path, err)
		code := errors.ErrCodeNetwork
		if stderrors.Is(err, context.DeadlineExceeded) {
			code = errors.ErrCodeTimeout
		}
		return nil, httputil.Retryable(errors.Wrap(code, err, "request %s", req.URL.Path))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(req.Context(), req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read response from %s", req.URL.Path))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.New(errors.ErrCodeUnauthorized, "NSP rejected the credentials (status %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, httputil.Retryable(errors.New(errors.ErrCodeNetwork, "%s returned status %d", req.URL.Path, resp.StatusCode))
	default:
		return nil, errors.New(errors.ErrCodeNetwork, "%s returned status %d", req.URL.Path, resp.StatusCode)
	}
}
