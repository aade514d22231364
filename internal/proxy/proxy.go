package proxy

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"

	"github.com/williampepple1/member-scraper/internal/config"
)

// Manager handles proxy configuration and rotation
type Manager struct {
	Config *config.ProxyConfig
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// GetProxyURL returns the proxy for the next session, or nil when proxies
// are disabled. With Rotate set each call picks one at random. Configured
// credentials are attached to the returned URL.
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if m == nil || m.Config == nil || !m.Config.Enabled || len(m.Config.List) == 0 {
		return nil, nil
	}

	raw := m.pick()
	proxyURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}
	switch proxyURL.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("proxy: %q: scheme must be http, https or socks5", proxyURL.Redacted())
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("proxy: %q has no host", proxyURL.Redacted())
	}

	if auth := m.Config.Auth; auth.Username != "" && auth.Password != "" {
		proxyURL.User = url.UserPassword(auth.Username, auth.Password)
	}
	return proxyURL, nil
}

func (m *Manager) pick() string {
	if !m.Config.Rotate {
		return m.Config.List[0]
	}
	return m.Config.List[rand.Intn(len(m.Config.List))]
}

// ApplyToTransport applies the proxy to an HTTP transport
func (m *Manager) ApplyToTransport(transport *http.Transport) (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil {
		return "", err
	}

	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
		return proxyURL.Redacted(), nil
	}

	return "", nil
}

// ServerFlag returns the value for Chrome's --proxy-server flag. Chrome does
// not accept credentials in that flag, so they are stripped.
func (m *Manager) ServerFlag() (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil || proxyURL == nil {
		return "", err
	}
	stripped := *proxyURL
	stripped.User = nil
	return stripped.String(), nil
}
