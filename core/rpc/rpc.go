// Package rpc is a minimal JSON-RPC 1.0 client for a bitcoin-style node.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	berrors "github.com/quantalab/mirrorbridge/core/errors"
	"github.com/quantalab/mirrorbridge/core/logging"
	"github.com/quantalab/mirrorbridge/core/metrics"
)

// Environment variables that configure the upstream node connection.
const (
	EnvURL      = "MIRROR_RPC_URL"
	EnvUser     = "MIRROR_RPC_USER"
	EnvPassword = "MIRROR_RPC_PASSWORD"
	EnvTimeout  = "MIRROR_RPC_TIMEOUT"
)

// DefaultTimeout bounds every upstream call unless overridden.
const DefaultTimeout = 5 * time.Second

// Methods the status surface relies on.
const (
	MethodGetBlockchainInfo = "getblockchaininfo"
	MethodGetNetworkInfo    = "getnetworkinfo"
)

// Settings carries the upstream connection parameters.
type Settings struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

// SettingsFromEnv reads the connection parameters from the environment.
// A malformed timeout falls back to the default.
func SettingsFromEnv() Settings {
	s := Settings{
		URL:      os.Getenv(EnvURL),
		User:     os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
		Timeout:  DefaultTimeout,
	}
	if raw := os.Getenv(EnvTimeout); raw != "" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs > 0 {
			s.Timeout = time.Duration(secs * float64(time.Second))
		}
	}
	return s
}

// Client talks JSON-RPC 1.0 to one upstream node.
type Client struct {
	settings Settings
	http     *http.Client
}

// NewClient builds a client for the given settings. The URL is required.
func NewClient(settings Settings) (*Client, error) {
	if settings.URL == "" {
		return nil, berrors.New(berrors.EConfig,
			"upstream rpc url is not configured", map[string]any{"env": EnvURL})
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	return &Client{
		settings: settings,
		http:     &http.Client{Timeout: settings.Timeout},
	}, nil
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call invokes one upstream method and returns its raw result plus the
// wall-clock latency of the HTTP exchange. Transport problems map to
// E_UPSTREAM_UNREACHABLE; an error payload from the node maps to
// E_UPSTREAM_RPC.
func (c *Client) Call(ctx context.Context, method string, params []any) (json.RawMessage, time.Duration, error) {
	log := logging.For("rpc")

	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(request{
		JSONRPC: "1.0",
		ID:      "mirrorbridge",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, berrors.New(berrors.EConfig,
			fmt.Sprintf("build rpc request: %v", err), map[string]any{"url": c.settings.URL})
	}
	req.Header.Set("Content-Type", "application/json")
	if c.settings.User != "" {
		req.SetBasicAuth(c.settings.User, c.settings.Password)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(started)
	if err != nil {
		log.Warn().Str("method", method).Err(err).Msg("upstream unreachable")
		return nil, elapsed, berrors.New(berrors.EUpstreamUnreachable,
			fmt.Sprintf("call %s: %v", method, err), map[string]any{"method": method})
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(method, elapsed.Seconds())

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, elapsed, berrors.New(berrors.EUpstreamRPC,
			fmt.Sprintf("decode %s response: %v", method, err), map[string]any{"method": method})
	}
	if decoded.Error != nil {
		return nil, elapsed, berrors.New(berrors.EUpstreamRPC,
			fmt.Sprintf("%s: upstream error %d: %s", method, decoded.Error.Code, decoded.Error.Message),
			map[string]any{"method": method, "code": decoded.Error.Code})
	}

	log.Debug().Str("method", method).Dur("latency", elapsed).Msg("rpc call ok")
	return decoded.Result, elapsed, nil
}

// BlockchainInfo is the subset of getblockchaininfo the bridge exposes.
type BlockchainInfo struct {
	Chain                string  `json:"chain"`
	Blocks               int64   `json:"blocks"`
	Headers              int64   `json:"headers"`
	VerificationProgress float64 `json:"verificationprogress"`
	InitialBlockDownload bool    `json:"initialblockdownload"`
}

// NetworkInfo is the subset of getnetworkinfo the bridge exposes.
type NetworkInfo struct {
	Version     int64  `json:"version"`
	Subversion  string `json:"subversion"`
	Connections int64  `json:"connections"`
}

// GetBlockchainInfo fetches and decodes the chain state.
func (c *Client) GetBlockchainInfo(ctx context.Context) (BlockchainInfo, time.Duration, error) {
	raw, elapsed, err := c.Call(ctx, MethodGetBlockchainInfo, nil)
	if err != nil {
		return BlockchainInfo{}, elapsed, err
	}
	var info BlockchainInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return BlockchainInfo{}, elapsed, berrors.New(berrors.EUpstreamRPC,
			fmt.Sprintf("decode blockchain info: %v", err), nil)
	}
	return info, elapsed, nil
}

// GetNetworkInfo fetches and decodes the node's network state.
func (c *Client) GetNetworkInfo(ctx context.Context) (NetworkInfo, time.Duration, error) {
	raw, elapsed, err := c.Call(ctx, MethodGetNetworkInfo, nil)
	if err != nil {
		return NetworkInfo{}, elapsed, err
	}
	var info NetworkInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return NetworkInfo{}, elapsed, berrors.New(berrors.EUpstreamRPC,
			fmt.Sprintf("decode network info: %v", err), nil)
	}
	return info, elapsed, nil
}
