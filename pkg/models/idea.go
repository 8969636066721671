// Package models defines the records and documents exchanged by the research workflow.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IdeaStatus is the Status field of an idea record.
type IdeaStatus string

const (
	IdeaStatusProposed       IdeaStatus = "Proposed"
	IdeaStatusSelected       IdeaStatus = "selected"
	IdeaStatusNew            IdeaStatus = "New"
	IdeaStatusResearching    IdeaStatus = "Researching"
	IdeaStatusReady          IdeaStatus = "Ready"
	IdeaStatusResearchFailed IdeaStatus = "Research_failed"
)

// Field names on the ideas table.
const (
	FieldTopic               = "Topic"
	FieldTitle               = "title"
	FieldStatus              = "Status"
	FieldIntent              = "intent"
	FieldContentBrief        = "content_brief"
	FieldCapturedAt          = "captured_at"
	FieldResearchStartedAt   = "research_started_at"
	FieldResearchCompletedAt = "research_completed_at"
	FieldIntelligenceFile    = "Intelligence File"
)

// Idea is the typed view of an idea record. Every field may be absent in storage.
type Idea struct {
	ID                string
	Topic             string
	Status            IdeaStatus
	Intent            string
	ContentBrief      string
	ResearchStartedAt string
}

// IdeaFromFields reads an idea out of raw record fields.
func IdeaFromFields(id string, fields map[string]any) *Idea {
	topic := StringField(fields, FieldTopic)
	if topic == "" {
		topic = StringField(fields, FieldTitle)
	}

	status := StringField(fields, FieldStatus)
	if status == "" {
		status = StringField(fields, "status")
	}

	return &Idea{
		ID:                id,
		Topic:             topic,
		Status:            IdeaStatus(status),
		Intent:            StringField(fields, FieldIntent),
		ContentBrief:      StringField(fields, FieldContentBrief),
		ResearchStartedAt: StringField(fields, FieldResearchStartedAt),
	}
}

// Locked reports whether the advisory research lock is held.
func (i *Idea) Locked() bool {
	return strings.TrimSpace(i.ResearchStartedAt) != ""
}

// Brief decodes the content brief. It returns nil when the brief is absent.
func (i *Idea) Brief() (map[string]any, error) {
	if strings.TrimSpace(i.ContentBrief) == "" {
		return nil, nil
	}

	var brief map[string]any

	err := json.Unmarshal([]byte(i.ContentBrief), &brief)
	if err != nil {
		return nil, fmt.Errorf("content_brief is not valid JSON: %w", err)
	}

	return brief, nil
}

// StringField returns fields[key] when it holds a string, "" otherwise.
func StringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}

	s, _ := fields[key].(string)

	return s
}
