package server

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/desertthunder/oneshot/internal/models"
)

var (
	ErrEmptyQuery       = errors.New("empty query string")
	ErrUndecodableQuery = errors.New("undecodable query string")
	ErrAmbiguousQuery   = errors.New("query carries both code and error")
	ErrUnknownShape     = errors.New("query is neither a code grant nor an error response")
	ErrMissingField     = errors.New("missing required field")
	ErrDuplicateField   = errors.New("duplicate field")
)

// ParseQuery decodes a raw callback query string into a code grant or an OAuth2 error response.
//
// The two shapes are told apart by required-field presence: "code" selects the grant shape
// (which also needs "state") and "error" selects the error shape. A query carrying both keys
// is rejected with [ErrAmbiguousQuery] rather than preferring either one. Unknown keys are ignored.
func ParseQuery(raw string) (models.AuthorizationResult, error) {
	if raw == "" {
		return models.AuthorizationResult{}, ErrEmptyQuery
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return models.AuthorizationResult{}, fmt.Errorf("%w: %v", ErrUndecodableQuery, err)
	}

	_, hasCode := values["code"]
	_, hasError := values["error"]

	switch {
	case hasCode && hasError:
		return models.AuthorizationResult{}, ErrAmbiguousQuery
	case hasError:
		resp, err := decodeErrorResponse(values)
		if err != nil {
			return models.AuthorizationResult{}, err
		}
		return models.AuthorizationResult{Err: resp}, nil
	case hasCode:
		grant, err := decodeGrant(values)
		if err != nil {
			return models.AuthorizationResult{}, err
		}
		return models.AuthorizationResult{Grant: grant}, nil
	default:
		return models.AuthorizationResult{}, ErrUnknownShape
	}
}

func decodeGrant(values url.Values) (*models.CodeGrant, error) {
	code, err := field(values, "code", true)
	if err != nil {
		return nil, err
	}
	state, err := field(values, "state", true)
	if err != nil {
		return nil, err
	}
	return &models.CodeGrant{
		Code:  models.AuthorizationCode(code),
		State: models.CsrfToken(state),
	}, nil
}

func decodeErrorResponse(values url.Values) (*models.ErrorResponse, error) {
	code, err := field(values, "error", true)
	if err != nil {
		return nil, err
	}
	description, err := field(values, "error_description", false)
	if err != nil {
		return nil, err
	}
	uri, err := field(values, "error_uri", false)
	if err != nil {
		return nil, err
	}
	return &models.ErrorResponse{Code: code, Description: description, URI: uri}, nil
}

// field returns the single value of key. Repeated keys are rejected; required keys must be non-empty.
// An optional key with an empty value reads the same as a missing one.
func field(values url.Values, key string, required bool) (string, error) {
	vs := values[key]
	switch {
	case len(vs) > 1:
		return "", fmt.Errorf("%w: %s", ErrDuplicateField, key)
	case len(vs) == 0 || vs[0] == "":
		if required {
			return "", fmt.Errorf("%w: %s", ErrMissingField, key)
		}
		return "", nil
	default:
		return vs[0], nil
	}
}

// classify maps a raw query string onto the outcome of a terminal request.
func classify(raw string) models.Outcome {
	result, err := ParseQuery(raw)
	if err != nil {
		return models.Malformed(err)
	}
	return models.FromResult(result)
}
