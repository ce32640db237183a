package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"directory-enricher/internal/common/errors"
)

// GetEmployee returns the enriched record for one employee identity.
// Identity matching is case-insensitive. A 404 means no data is
// available, which covers both "no such employee" and "directory
// unreachable and nothing cached".
func (h *Handlers) GetEmployee(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	email := vars["email"]

	record, err := h.cache.GetEmployee(r.Context(), email)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeValidation) {
			http.Error(w, "Employee identity must not be blank", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to look up employee", http.StatusInternalServerError)
		return
	}

	if record == nil {
		http.Error(w, "Employee not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}
