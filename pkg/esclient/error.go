// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package esclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const indexNotFoundException = "index_not_found_exception"

// ErrorResponse is the body Elasticsearch returns for API-level errors.
type ErrorResponse struct {
	Status int `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// APIError is a non 2xx response from the Elasticsearch API.
type APIError struct {
	StatusCode    int
	ErrorResponse ErrorResponse
}

// newAPIError converts an HTTP-level error response into an APIError,
// attempting to parse the body for the error details Elasticsearch stores.
func newAPIError(statusCode int, body io.Reader) error {
	apiError := &APIError{StatusCode: statusCode}
	var errorResponse ErrorResponse
	// Not all error bodies parse (408 on some endpoints differs); the status
	// code alone is still actionable.
	if err := json.NewDecoder(body).Decode(&errorResponse); err == nil {
		apiError.ErrorResponse = errorResponse
	}
	return apiError
}

// Error implements the error interface.
func (a *APIError) Error() string {
	return fmt.Sprintf("elasticsearch API error %d: %s: %s",
		a.StatusCode, a.ErrorResponse.Error.Type, a.ErrorResponse.Error.Reason)
}

// IsNotFound checks whether the error was an HTTP 404 error.
func IsNotFound(err error) bool {
	return isHTTPError(err, http.StatusNotFound)
}

// IsTimeout checks whether the error was an HTTP 408 error.
func IsTimeout(err error) bool {
	return isHTTPError(err, http.StatusRequestTimeout)
}

// IsUnauthorized checks whether the error was an HTTP 401 error.
func IsUnauthorized(err error) bool {
	return isHTTPError(err, http.StatusUnauthorized)
}

// Is4xx checks whether the error was any HTTP 4xx error.
func Is4xx(err error) bool {
	apiErr := new(APIError)
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode <= 499
	}
	return false
}

// IsIndexNotFound returns true when the error reports a missing index. The
// engine treats this as an empty result, not a failure.
func IsIndexNotFound(err error) bool {
	apiErr := new(APIError)
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound &&
			(apiErr.ErrorResponse.Error.Type == indexNotFoundException || apiErr.ErrorResponse.Error.Type == "")
	}
	return false
}

// IsDeadlineExceeded returns true when the error stems from the per-request
// deadline, either locally or propagated from the transport.
func IsDeadlineExceeded(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func isHTTPError(err error, statusCode int) bool {
	apiErr := new(APIError)
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}
