// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestWrapHandlerFuncErrorShape(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"bad request", BadRequest(errors.New("no such thing")), http.StatusBadRequest, "no such thing"},
		{"forbidden", Forbidden(errors.New("not yours")), http.StatusForbidden, "not yours"},
		{"status without cause", HTTPError(nil, http.StatusConflict), http.StatusConflict, "Conflict"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.msg, errorBody(t, rec))
		})
	}
}

func TestWrapHandlerFuncSuccessWritesNothingExtra(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
		return WriteJSON(w, M{"ok": true})
	})
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x01"), addr)

	_, err = ParseAddress("0x123")
	assert.Error(t, err)
	_, err = ParseAddress("not-an-address")
	assert.Error(t, err)
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		Known string `json:"known"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"known":"x"}`), &v))
	assert.Equal(t, "x", v.Known)

	err := ParseJSON(strings.NewReader(`{"known":"x","bogus":1}`), &v)
	assert.Error(t, err)
}
