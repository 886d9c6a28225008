package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/http/response"
)

// EnvelopeVersion is the envelope format version carried in the "v" field.
const EnvelopeVersion = response.Version

// APIEnvelope wraps every operation response.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps a coded error response.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps operation output in the response envelope.
// Coded errors keep their code and details; other errors only carry their
// message.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch val := v.(type) {
	case APIEnvelope, APIErrorEnvelope:
		return val, nil
	case *APIError:
		return errorEnvelope(val.Code, val.Message, val.Details), nil
	case error:
		var derr *domainerrors.Error
		if errors.As(val, &derr) {
			return errorEnvelope(string(derr.Code), derr.Message, derr.Details), nil
		}
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Error: val.Error()}, nil
	default:
		return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
	}
}

func errorEnvelope(code, message string, details any) APIErrorEnvelope {
	return APIErrorEnvelope{
		Version: EnvelopeVersion,
		Success: false,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}
