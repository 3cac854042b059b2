package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResultEnvelope wraps the OTP request/verify responses.
type ResultEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HealthEnvelope is returned by the root uptime check.
type HealthEnvelope struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// SMTPCheckEnvelope reports the outcome of a transport probe.
type SMTPCheckEnvelope struct {
	OK       bool   `json:"ok"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Security string `json:"security"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func writeResult(w http.ResponseWriter, status int, errMsg string) {
	writeJSON(w, status, ResultEnvelope{Success: errMsg == "", Error: errMsg})
}
