package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorResponse is the envelope every kiosk failure uses. Redirect, when
// set, is where the kiosk UI should route instead of staying on the step.
type errorResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message})
}

func writeRedirect(w http.ResponseWriter, status int, message, redirect string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message, Redirect: redirect})
}
