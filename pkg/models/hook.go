package models

const (
	HookStatusCandidate = "candidate"
	DefaultHookIntent   = "authority"
)

// HookDraft is one hook as authored by the hook extractor.
type HookDraft struct {
	HookText  string `json:"hook_text"  validate:"required"`
	HookType  string `json:"hook_type"  validate:"required"`
	AngleName string `json:"angle_name" validate:"required"`
}

// HooksDocument is the hooks artifact.
type HooksDocument struct {
	Hooks []HookDraft `json:"hooks" validate:"required,dive"`
}

// Hook is the persisted hooks-library row.
type Hook struct {
	HookText   string
	HookType   string
	SourceIdea string
	AngleName  string
	Intent     string
}

// Fields renders the hook as a new candidate record.
func (h Hook) Fields() map[string]any {
	return map[string]any{
		"hook_text":   h.HookText,
		"hook_type":   h.HookType,
		"source_idea": []string{h.SourceIdea},
		"angle_name":  h.AngleName,
		"intent":      h.Intent,
		"status":      HookStatusCandidate,
		"use_count":   0,
	}
}
