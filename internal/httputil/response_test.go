package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondErrorWithCode(rec, "Invalid token", CodeInvalidToken, http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"Invalid token","code":"INVALID_TOKEN"}`, rec.Body.String())
}

func TestRespondError_OmitsEmptyCode(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondError(rec, "Unauthorized", http.StatusUnauthorized)

	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
}
