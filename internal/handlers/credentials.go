package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"directory-enricher/internal/directory/client"
)

type credentialsRequest struct {
	BaseURL    string `json:"baseUrl"`
	Token      string `json:"token"`
	AuthScheme string `json:"authScheme,omitempty"`
}

// UpdateCredentials replaces the directory service credentials at
// runtime. A change invalidates all cached directory data, so the next
// read fetches fresh records under the new identity.
func (h *Handlers) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.BaseURL = strings.TrimSpace(req.BaseURL)
	req.Token = strings.TrimSpace(req.Token)

	if req.BaseURL == "" || req.Token == "" {
		http.Error(w, "baseUrl and token are required", http.StatusBadRequest)
		return
	}

	parsed, err := url.Parse(req.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		http.Error(w, "baseUrl must be an absolute URL", http.StatusBadRequest)
		return
	}

	h.creds.Set(client.Credentials{
		BaseURL:    req.BaseURL,
		AuthScheme: req.AuthScheme,
		Token:      req.Token,
	})

	w.WriteHeader(http.StatusNoContent)
}
