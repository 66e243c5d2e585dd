// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package restutil carries the HTTP plumbing shared by the API handlers:
// error-to-status mapping with JSON error bodies, strict JSON parsing
// and address parsing for path variables.
package restutil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// JSONContentType is the content type of every response body, error
// bodies included.
const JSONContentType = "application/json; charset=utf-8"

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return http.StatusText(e.status)
	}
	return e.cause.Error()
}

// HTTPError creates an error carrying an http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest marks the error as the caller's fault.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// Forbidden marks the request as understood but refused.
func Forbidden(cause error) error {
	return HTTPError(cause, http.StatusForbidden)
}

// HandlerFunc is http.HandlerFunc with an error return. Errors built by
// HTTPError respond their status, anything else responds
// http.StatusInternalServerError; either way the body is a JSON object
// of the form {"error": "..."}.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc converts HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := http.StatusInternalServerError
		if he, ok := err.(*httpError); ok {
			status = he.status
		}
		w.Header().Set("Content-Type", JSONContentType)
		w.WriteHeader(status)
		// the encode can only fail on a broken connection, nothing left to do
		_ = json.NewEncoder(w).Encode(M{"error": err.Error()})
	}
}

// ParseAddress parses a 0x-prefixed hex token or participant address,
// rejecting anything that is not exactly 20 bytes.
func ParseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errors.Errorf("invalid address %q", value)
	}
	return common.HexToAddress(value), nil
}

// ParseJSON parses a JSON object in strict mode, rejecting unknown fields.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON responds an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any
