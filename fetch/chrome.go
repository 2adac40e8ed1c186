package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/lead-agent/prospect/content"
)

// ChromeClient fetches with a Chrome TLS ClientHello fingerprint (utls).
// It is the escalation tier for sites whose bot walls reject the default
// Go TLS handshake.
type ChromeClient struct {
	client *http.Client
}

// NewChromeClient creates a ChromeClient with the Chrome fingerprint and
// ALPN locked to http/1.1.
func NewChromeClient() *ChromeClient {
	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	return &ChromeClient{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// dialTLSChrome establishes a TLS connection with a Chrome ClientHello.
// The spec is built fresh per dial: utls extensions hold handshake state
// and must not be shared between connections. ALPN is restricted to
// http/1.1 so the transport never negotiates HTTP/2 over a utls conn.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetch: build tls spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			break
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func (c *ChromeClient) Name() string { return "chrome" }

func (c *ChromeClient) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return nil, fmt.Errorf("fetch: non-html content-type %q for %s", ct, url)
	}

	htmlStr := string(body)
	return &Result{
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		HTML:       htmlStr,
		Title:      content.Title(htmlStr),
		ClientName: c.Name(),
	}, nil
}
