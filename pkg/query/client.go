// Package query defines the question-answering service used to research an idea.
package query

import "context"

// Answer is the response to one research question.
type Answer struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
}

// Client asks one question and returns the answer with its citations.
type Client interface {
	Ask(ctx context.Context, question string) (Answer, error)
}
