package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/maxzer/booking/pkg/api"
)

func writeJSONError(w http.ResponseWriter, status int, resp api.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
