package errors

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestErrorStringAndCodes(t *testing.T) {
	err := New(EBackendUnavailable, "native core missing", map[string]any{"binary": "satoshi_mirror"})
	if err.Error() != "E_BACKEND_UNAVAILABLE: native core missing" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}

	bare := BridgeError{Code: EIO}
	if bare.Error() != "E_IO" {
		t.Fatalf("unexpected bare error string: %s", bare.Error())
	}

	if got := ExitCodeFor(EConfig); got != 2 {
		t.Fatalf("config exit code: %d", got)
	}
	if got := ExitCodeFor(EBackendUnavailable); got != 3 {
		t.Fatalf("backend exit code: %d", got)
	}
	if got := ExitCodeFor(EGenericFailure); got != 1 {
		t.Fatalf("generic exit code: %d", got)
	}
}

func TestEnvelopeRoundtrip(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	raw, err := MarshalEnvelope(New(EUpstreamRPC, "upstream rejected call", nil), "test", at)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Code != EUpstreamRPC || env.ExitCode != 4 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.SchemaID != "mirrorbridge.error_envelope" {
		t.Fatalf("unexpected schema id: %s", env.SchemaID)
	}
}

func TestEnvelopeWrapsForeignError(t *testing.T) {
	env := ToEnvelope(errors.New("boom"), "test", time.Now())
	if env.Code != EGenericFailure {
		t.Fatalf("expected generic code, got %s", env.Code)
	}
	if env.Message != "boom" {
		t.Fatalf("expected original message, got %s", env.Message)
	}
}
