package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteSuccess(rec, http.StatusOK, "en", map[string]string{"id": "user123"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "success", env.Message)
	assert.Empty(t, env.Error)
	require.NotNil(t, env.Lang)
	assert.Equal(t, "en", *env.Lang)
}

func TestWriteError_MultipleMessages(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteBadRequest(rec, "ar", "first problem", "second problem")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "error", env.Message)
	assert.Equal(t, []string{"first problem", "second problem"}, env.Error)
}

func TestWriteError_EmptyLangOmitted(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalError(rec, "", "boom")

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Nil(t, env.Lang)
}

func TestRequestLang(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{"", "ar", false},
		{"?lang=ar", "ar", false},
		{"?lang=en", "en", false},
		{"?lang=fr", "", true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		got, err := RequestLang(req)
		if tt.wantErr {
			assert.Error(t, err, "query %q", tt.query)
			continue
		}
		require.NoError(t, err, "query %q", tt.query)
		assert.Equal(t, tt.want, got)
	}
}
