package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape shared by every endpoint in the platform:
// message is "success" or "error", error carries the human-readable failure
// strings, lang echoes the request language, data is the payload.
type Envelope struct {
	Message string   `json:"message"`
	Error   []string `json:"error"`
	Lang    *string  `json:"lang"`
	Data    any      `json:"data"`
}

// WriteSuccess writes a success envelope with the given payload.
func WriteSuccess(w http.ResponseWriter, statusCode int, lang string, data any) {
	writeEnvelope(w, statusCode, Envelope{
		Message: "success",
		Lang:    langPtr(lang),
		Data:    data,
	})
}

// WriteError writes an error envelope with one or more failure messages.
func WriteError(w http.ResponseWriter, statusCode int, lang string, errs ...string) {
	writeEnvelope(w, statusCode, Envelope{
		Message: "error",
		Error:   errs,
		Lang:    langPtr(lang),
	})
}

func WriteBadRequest(w http.ResponseWriter, lang string, errs ...string) {
	WriteError(w, http.StatusBadRequest, lang, errs...)
}

func WriteUnauthorized(w http.ResponseWriter, lang string, errs ...string) {
	WriteError(w, http.StatusUnauthorized, lang, errs...)
}

func WriteForbidden(w http.ResponseWriter, lang string, errs ...string) {
	WriteError(w, http.StatusForbidden, lang, errs...)
}

func WriteNotFound(w http.ResponseWriter, lang string, errs ...string) {
	WriteError(w, http.StatusNotFound, lang, errs...)
}

func WriteTooManyRequests(w http.ResponseWriter, lang string, errs ...string) {
	WriteError(w, http.StatusTooManyRequests, lang, errs...)
}

func WriteInternalError(w http.ResponseWriter, lang string, errs ...string) {
	WriteError(w, http.StatusInternalServerError, lang, errs...)
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to the client
	_ = json.NewEncoder(w).Encode(env)
}

func langPtr(lang string) *string {
	if lang == "" {
		return nil
	}
	return &lang
}
