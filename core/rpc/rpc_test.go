package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	berrors "github.com/quantalab/mirrorbridge/core/errors"
)

func bridgeCode(t *testing.T, err error) berrors.Code {
	t.Helper()
	berr, ok := err.(berrors.BridgeError)
	if !ok {
		t.Fatalf("expected BridgeError, got %T: %v", err, err)
	}
	return berr.Code
}

func TestCallSendsJSONRPCEnvelope(t *testing.T) {
	var captured map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"result": {"blocks": 812345}, "error": null, "id": "mirrorbridge"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Settings{URL: srv.URL, User: "rpcuser", Password: "rpcpass"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	raw, elapsed, err := client.Call(context.Background(), MethodGetBlockchainInfo, nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if elapsed <= 0 {
		t.Fatalf("latency not measured: %v", elapsed)
	}

	if captured["jsonrpc"] != "1.0" {
		t.Fatalf("jsonrpc version = %v, want 1.0", captured["jsonrpc"])
	}
	if captured["method"] != "getblockchaininfo" {
		t.Fatalf("method = %v", captured["method"])
	}
	if params, ok := captured["params"].([]any); !ok || len(params) != 0 {
		t.Fatalf("params = %v, want empty array", captured["params"])
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("rpcuser:rpcpass"))
	if gotAuth != wantAuth {
		t.Fatalf("authorization = %q, want %q", gotAuth, wantAuth)
	}

	var result struct {
		Blocks int64 `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &result); err != nil || result.Blocks != 812345 {
		t.Fatalf("result = %s (err %v)", raw, err)
	}
}

func TestCallUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := NewClient(Settings{URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, _, err = client.Call(context.Background(), MethodGetNetworkInfo, nil)
	if code := bridgeCode(t, err); code != berrors.EUpstreamUnreachable {
		t.Fatalf("code = %s, want %s", code, berrors.EUpstreamUnreachable)
	}
}

func TestCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client, err := NewClient(Settings{URL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, _, err = client.Call(context.Background(), MethodGetBlockchainInfo, nil)
	if code := bridgeCode(t, err); code != berrors.EUpstreamUnreachable {
		t.Fatalf("code = %s, want %s", code, berrors.EUpstreamUnreachable)
	}
}

func TestCallUpstreamErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": null, "error": {"code": -28, "message": "Loading block index..."}, "id": "mirrorbridge"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Settings{URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, _, err = client.Call(context.Background(), MethodGetBlockchainInfo, nil)
	if code := bridgeCode(t, err); code != berrors.EUpstreamRPC {
		t.Fatalf("code = %s, want %s", code, berrors.EUpstreamRPC)
	}
	if !strings.Contains(err.Error(), "Loading block index") {
		t.Fatalf("error does not carry upstream message: %v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Settings{})
	if code := bridgeCode(t, err); code != berrors.EConfig {
		t.Fatalf("code = %s, want %s", code, berrors.EConfig)
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv(EnvURL, "http://127.0.0.1:8332")
	t.Setenv(EnvUser, "u")
	t.Setenv(EnvPassword, "p")
	t.Setenv(EnvTimeout, "2.5")

	s := SettingsFromEnv()
	if s.URL != "http://127.0.0.1:8332" || s.User != "u" || s.Password != "p" {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.Timeout != 2500*time.Millisecond {
		t.Fatalf("timeout = %v, want 2.5s", s.Timeout)
	}

	t.Setenv(EnvTimeout, "bogus")
	if s := SettingsFromEnv(); s.Timeout != DefaultTimeout {
		t.Fatalf("malformed timeout should fall back, got %v", s.Timeout)
	}
}

func TestGetBlockchainInfoDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"chain": "main", "blocks": 812345, "headers": 812345,
			"verificationprogress": 0.9999, "initialblockdownload": false}, "error": null}`))
	}))
	defer srv.Close()

	client, err := NewClient(Settings{URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	info, _, err := client.GetBlockchainInfo(context.Background())
	if err != nil {
		t.Fatalf("get blockchain info: %v", err)
	}
	if info.Chain != "main" || info.Blocks != 812345 || info.VerificationProgress != 0.9999 {
		t.Fatalf("unexpected info: %+v", info)
	}
}
