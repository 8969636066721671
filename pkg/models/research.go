package models

// QueryCount is the number of queries a research run issues.
const QueryCount = 3

// Query is one research question authored for phase2.
type Query struct {
	Query  string `json:"query"            validate:"required"`
	Intent string `json:"intent,omitempty"`
}

// QueriesDocument is the queries artifact.
type QueriesDocument struct {
	Queries []Query `json:"queries" validate:"required,dive"`
}

// QueryResult is the answer to one query together with the log entry that recorded it.
type QueryResult struct {
	Query     string   `json:"query"`
	Intent    string   `json:"intent,omitempty"`
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
	LogID     string   `json:"log_id"`
}

// ResultsDocument is the results artifact written by phase2. LogIDs keeps query order.
type ResultsDocument struct {
	WorkflowID string        `json:"workflow_id"`
	Results    []QueryResult `json:"results"`
	LogIDs     []string      `json:"log_ids"`
}

// AngleDigest is the per-angle summary handed to the hook extractor after phase3.
type AngleDigest struct {
	Index          int      `json:"index"`
	AngleName      string   `json:"angle_name"`
	ContrarianTake string   `json:"contrarian_take"`
	Facts          []string `json:"facts"`
}
