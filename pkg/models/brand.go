package models

// Brand is the singleton brand context surfaced to the query author.
type Brand struct {
	ID             string `json:"id"`
	MainGuidelines string `json:"main_guidelines,omitempty"`
	Goals          string `json:"goals,omitempty"`
	ICPShort       string `json:"icp_short,omitempty"`
}

// BrandFromFields reads the brand record, accepting the legacy display-name columns.
func BrandFromFields(id string, fields map[string]any) *Brand {
	return &Brand{
		ID:             id,
		MainGuidelines: firstString(fields, "main_guidelines", "Main Guidelines"),
		Goals:          firstString(fields, "goals", "Goals"),
		ICPShort:       firstString(fields, "icp_short", "ICP Short"),
	}
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := StringField(fields, key); s != "" {
			return s
		}
	}

	return ""
}
