package customHttpClient

import (
	"net/http"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient is shared by every outbound completion call so connections
// to the provider get reused across chat turns.
func PooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
