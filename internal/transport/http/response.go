package httptransport

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

type apiError struct {
	Error string `json:"error"`
}

// respond encodes v before touching the header, so an encoding failure
// still yields a well-formed 500.
func respond(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		b = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respond(w, code, apiError{Error: msg})
}
