package domain

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// Payloads embedded in string fields are application defined. Every parser
// below returns the empty variant on malformed input instead of an error.

// BookingAction is one start or stop entry of a time booking record.
type BookingAction struct {
	ProjectID string  `json:"pid"`
	Start     bool    `json:"st"`
	Comment   string  `json:"comment,omitempty"`
	Time      Instant `json:"time,omitzero"` // explicit stop time, overrides the ledger timestamp
}

// BookingRecord is the transaction record written by the time booking demo.
type BookingRecord struct {
	Actions []BookingAction `json:"actions"`
}

// Encode serializes the record for use as a transaction record.
func (r BookingRecord) Encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(data)
}

// ParseBookingRecord decodes a transaction record into a booking record.
// ok is false when the record carries no booking information.
func ParseBookingRecord(raw string) (rec BookingRecord, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return BookingRecord{}, false
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		slog.Debug("ignoring transaction record, not a booking record", "record", raw, "error", err)
		return BookingRecord{}, false
	}
	return rec, len(rec.Actions) > 0
}

// ProjectList is stored in the customPayload field of a time booking object.
type ProjectList struct {
	Projects []string `json:"ListOfProjects"`
}

// ParseProjectList decodes a customPayload into a project list. Any error
// yields an empty list.
func ParseProjectList(raw string) ProjectList {
	var pl ProjectList
	if strings.TrimSpace(raw) == "" {
		return pl
	}
	if err := json.Unmarshal([]byte(raw), &pl); err != nil {
		slog.Debug("ignoring customPayload, not a project list", "payload", raw, "error", err)
		return ProjectList{}
	}
	return pl
}

// Encode serializes the project list for the customPayload field.
func (p ProjectList) Encode() string {
	if p.Projects == nil {
		p.Projects = []string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// Contains reports whether name is already a project.
func (p ProjectList) Contains(name string) bool {
	for _, n := range p.Projects {
		if n == name {
			return true
		}
	}
	return false
}

// AbstentionID is the vote choice recorded for an intentional abstention.
const AbstentionID = "invalid"

// ElectionConfig is stored in the customPayload field of every voter object.
type ElectionConfig struct {
	Title   string   `json:"title"`
	Options []string `json:"vote_options"`
}

// ParseElectionConfig decodes a customPayload into an election config.
// ok is false when the payload is not a readable election config.
func ParseElectionConfig(raw string) (cfg ElectionConfig, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return ElectionConfig{}, false
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		slog.Debug("ignoring customPayload, not an election config", "payload", raw, "error", err)
		return ElectionConfig{}, false
	}
	return cfg, true
}

// Choices returns the allowed vote choices including the abstention id.
func (c ElectionConfig) Choices() []string {
	out := make([]string, 0, len(c.Options)+1)
	out = append(out, c.Options...)
	return append(out, AbstentionID)
}
