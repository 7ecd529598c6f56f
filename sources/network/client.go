package network

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"golang.org/x/net/proxy"
)

// BackendHTTPClient is the transport for the backend gateway. Timeouts
// are bounded everywhere so a slow backend sheds load instead of
// hanging a conversation.
type BackendHTTPClient struct {
	*http.Client
}

// TelegramHTTPClient is the transport handed to the Bot API client.
// When the proxy is enabled all Telegram traffic is dialed through it.
type TelegramHTTPClient struct {
	*http.Client
}

func NewBackendHTTPClient(config *configuration.Config) *BackendHTTPClient {
	dialer := &net.Dialer{Timeout: config.Backend.ConnectTimeout}

	return &BackendHTTPClient{&http.Client{
		Timeout: config.Backend.RequestTimeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          20,
			IdleConnTimeout:       10 * time.Minute,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 5 * time.Second,
			MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
		},
	}}
}

func NewTelegramHTTPClient(config *configuration.Config, log *tracing.Logger) *TelegramHTTPClient {
	if !config.Proxy.Enabled {
		return &TelegramHTTPClient{&http.Client{Timeout: 2 * time.Minute}}
	}

	dialer, err := proxy.SOCKS5(
		"tcp",
		config.Proxy.Address,
		&proxy.Auth{User: config.Proxy.User, Password: config.Proxy.Password},
		proxy.Direct,
	)
	if err != nil {
		log.F("Failed to create proxy dialer", tracing.InnerError, err)
	}

	dc := func(ctx context.Context, network, address string) (net.Conn, error) {
		return dialer.Dial(network, address)
	}

	log.I("Telegram traffic routed through SOCKS5 proxy", "proxy_address", config.Proxy.Address)

	return &TelegramHTTPClient{&http.Client{
		Timeout: 2 * time.Minute,
		Transport: &http.Transport{
			DialContext:         dc,
			MaxIdleConns:        20,
			IdleConnTimeout:     10 * time.Minute,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}}
}
