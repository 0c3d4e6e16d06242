package repositories

import (
	"context"
	"fmt"

	"github.com/callsight/server/domain/entities"
)

// ConversationAnalyzer abstracts the external inference collaborator.
// Implementations own the prompt template and response parsing; callers are
// expected to have rejected empty transcripts before invoking Analyze.
type ConversationAnalyzer interface {
	// Analyze scores a newline-joined conversation transcript and returns
	// the normalized result. Transport failures, non-2xx responses and
	// malformed model output all surface as errors; no retry is attempted.
	Analyze(ctx context.Context, conversationText string) (*entities.AnalysisResult, error)
}

// ParseError indicates the model responded, but not with a usable analysis
// (malformed JSON, missing keys, out-of-domain values).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable analysis response: %s", e.Reason)
}
