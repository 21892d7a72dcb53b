// Package inference defines the narrow contract to the AI generation
// backend. The pipeline only ever sees this interface, so the backend can
// be swapped without touching cache or orchestration logic.
package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client issues one batched generation request per call. The response is
// aligned 1:1 with the request items; a misaligned response is an error,
// never silently matched.
type Client interface {
	GenerateCards(ctx context.Context, request GenerateCardsRequest) (GenerateCardsResponse, error)
}

// WordContext is the minimal per-word payload sent to the backend. Fields
// the caller can reconstruct locally (book formatting, highlighted context)
// are deliberately excluded to keep request and response cost down.
type WordContext struct {
	Word  string `json:"word"`
	Lemma string `json:"lemma"`
	Usage string `json:"usage,omitempty"`
	Book  string `json:"book,omitempty"`
}

// GenerateCardsRequest asks for enrichments for one batch of words, all in
// the same language.
type GenerateCardsRequest struct {
	Words          []WordContext
	WordLanguage   string
	NativeLanguage string
	TargetLanguage string
}

// CardPayload is the minimal enrichment the backend returns per word.
type CardPayload struct {
	Definition string
	Gloss      string
	Notes      string
}

// CardResult is the outcome for one requested word: either a payload or a
// failure reason. A failed item never blocks the rest of its batch.
type CardResult struct {
	Payload       CardPayload
	FailureReason string
}

// Failed reports whether the item did not obtain a usable payload.
func (r CardResult) Failed() bool {
	return r.FailureReason != ""
}

// GenerateCardsResponse carries one result per requested word, in request
// order, plus an opaque identifier of the external call that produced it.
type GenerateCardsResponse struct {
	Results []CardResult
	CallID  string
}

const (
	// DefaultMaxRetryAttempts bounds whole-batch retries on transient failures.
	DefaultMaxRetryAttempts = 3
)
