package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/arborfam/arbor/pkg/httpapi"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		panic(err)
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	_ = httpapi.WriteError(w, status, code, message, nil)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, key string, def, max int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 || (max > 0 && parsed > max) {
		return def
	}
	return parsed
}
