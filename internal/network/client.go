package network

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const proxyTestTimeout = 15 * time.Second

// ProxyProvider supplies the proxy URL for outbound provider calls.
type ProxyProvider interface {
	GetProxyURL(ctx context.Context) string
}

// StaticProxy is a ProxyProvider with a fixed URL; empty means direct.
type StaticProxy string

func (p StaticProxy) GetProxyURL(ctx context.Context) string {
	return string(p)
}

// ClientFactory creates HTTP clients for the LLM SDKs.
type ClientFactory struct {
	proxyProvider  ProxyProvider
	testHTTPClient *http.Client // For testing only
}

// NewClientFactory creates a new client factory.
func NewClientFactory(proxyProvider ProxyProvider) *ClientFactory {
	if proxyProvider == nil {
		proxyProvider = StaticProxy("")
	}
	return &ClientFactory{proxyProvider: proxyProvider}
}

// NewClientFactoryForTest creates a client factory that always returns client.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	return &ClientFactory{
		proxyProvider:  StaticProxy(""),
		testHTTPClient: client,
	}
}

// NewHTTPClient creates an http.Client honouring the proxy configuration.
// A zero timeout means none: streamed completions can run for minutes and
// are bounded by the request context instead.
func (f *ClientFactory) NewHTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}

	client := &http.Client{Timeout: timeout}
	if proxyURL := f.proxyProvider.GetProxyURL(ctx); proxyURL != "" {
		client.Transport = newTransportWithProxy(proxyURL)
	}
	return client
}

// GetProxyURL returns the current proxy URL.
func (f *ClientFactory) GetProxyURL(ctx context.Context) string {
	return f.proxyProvider.GetProxyURL(ctx)
}

// TestProxy fetches testURL through proxyURL and reports whether the
// round trip succeeded.
func (f *ClientFactory) TestProxy(ctx context.Context, proxyURL, testURL string) error {
	if _, err := url.Parse(proxyURL); err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	client := &http.Client{
		Timeout:   proxyTestTimeout,
		Transport: newTransportWithProxy(proxyURL),
	}
	if f.testHTTPClient != nil {
		client = f.testHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, testURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// newTransportWithProxy creates an http.Transport with proper proxy support.
// SOCKS proxies go through golang.org/x/net/proxy; HTTP/HTTPS proxies use
// http.ProxyURL.
func newTransportWithProxy(proxyURL string) *http.Transport {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return &http.Transport{}
	}

	if strings.HasPrefix(parsed.Scheme, "socks") {
		var auth *proxy.Auth
		if parsed.User != nil {
			auth = &proxy.Auth{
				User: parsed.User.Username(),
			}
			if password, ok := parsed.User.Password(); ok {
				auth.Password = password
			}
		}

		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return &http.Transport{}
		}

		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}
	}

	return &http.Transport{
		Proxy: http.ProxyURL(parsed),
	}
}
