package web

import "github.com/metaarchitect/research-engine/pkg/uif"

// PhaseRequest is the optional body of POST /phases/:phase.
type PhaseRequest struct {
	EntityID string `json:"entity_id" validate:"omitempty,max=64,printascii"`
	Reason   string `json:"reason"    validate:"omitempty,max=500"`
}

// ValidationResponse is returned for a UIF that passes the gate.
type ValidationResponse struct {
	Valid   bool       `json:"valid"`
	Errors  []string   `json:"errors"`
	Profile string     `json:"profile"`
	Counts  uif.Counts `json:"counts"`
}
