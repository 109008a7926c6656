package errors

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SignInError is the 401 payload for checkout endpoints. It carries the
// intended purchase so the client can send the user to sign in and resume
// the same buy afterwards.
type SignInError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	ResumePackage string `json:"resume_package,omitempty"`
	ResumeGateway string `json:"resume_gateway,omitempty"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
