package errors

import (
	"encoding/json"
	"fmt"
	"time"
)

type Code string

const (
	EGenericFailure      Code = "E_GENERIC_FAILURE"
	EConfig              Code = "E_CONFIG"
	ELaunch              Code = "E_LAUNCH"
	EBackendUnavailable  Code = "E_BACKEND_UNAVAILABLE"
	EBuildConfig         Code = "E_BUILD_CONFIG"
	EUpstreamUnreachable Code = "E_UPSTREAM_UNREACHABLE"
	EUpstreamRPC         Code = "E_UPSTREAM_RPC"
	EIO                  Code = "E_IO"
	EInvalidInput        Code = "E_INVALID_INPUT"
)

type BridgeError struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e BridgeError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, message string, details map[string]any) error {
	return BridgeError{Code: code, Message: message, Details: details}
}

func ExitCodeFor(code Code) int {
	switch code {
	case EConfig, EBuildConfig:
		return 2
	case EBackendUnavailable:
		return 3
	case EUpstreamUnreachable, EUpstreamRPC:
		return 4
	case EIO:
		return 5
	case EInvalidInput:
		return 6
	default:
		return 1
	}
}

type Envelope struct {
	SchemaID        string         `json:"schema_id"`
	SchemaVersion   string         `json:"schema_version"`
	CreatedAt       time.Time      `json:"created_at"`
	ProducerVersion string         `json:"producer_version"`
	Code            Code           `json:"code"`
	Message         string         `json:"message"`
	ExitCode        int            `json:"exit_code"`
	Details         map[string]any `json:"details,omitempty"`
}

func ToEnvelope(err error, producerVersion string, at time.Time) Envelope {
	berr, ok := err.(BridgeError)
	if !ok {
		return Envelope{
			SchemaID:        "mirrorbridge.error_envelope",
			SchemaVersion:   "v1",
			CreatedAt:       at.UTC(),
			ProducerVersion: producerVersion,
			Code:            EGenericFailure,
			Message:         err.Error(),
			ExitCode:        ExitCodeFor(EGenericFailure),
		}
	}

	return Envelope{
		SchemaID:        "mirrorbridge.error_envelope",
		SchemaVersion:   "v1",
		CreatedAt:       at.UTC(),
		ProducerVersion: producerVersion,
		Code:            berr.Code,
		Message:         berr.Message,
		ExitCode:        ExitCodeFor(berr.Code),
		Details:         berr.Details,
	}
}

func MarshalEnvelope(err error, producerVersion string, at time.Time) ([]byte, error) {
	env := ToEnvelope(err, producerVersion, at)
	out, mErr := json.MarshalIndent(env, "", "  ")
	if mErr != nil {
		return nil, fmt.Errorf("marshal error envelope: %w", mErr)
	}
	return out, nil
}
