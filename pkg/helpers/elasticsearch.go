package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient creates an Elasticsearch client with optional basic auth.
// Requests are retried on 502/503/504 up to three times.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses:     addrs,
		Username:      username,
		Password:      password,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		MaxRetries:    3,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// ESEnsureIndex creates index with the given mapping body unless it exists.
// It reports whether the index was created.
func ESEnsureIndex(ctx context.Context, es *elasticsearch.Client, index, mapping string) (bool, error) {
	res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	_ = res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, fmt.Errorf("check index %s: %s", index, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(mapping)}.Do(ctx, es)
	if err != nil {
		return false, fmt.Errorf("create index %s: %w", index, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		b, _ := io.ReadAll(res.Body)
		// lost a race with another creator
		if strings.Contains(string(b), "resource_already_exists_exception") {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return true, nil
}
