package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/at-ishikawa/kindanki/internal/inference"
)

const DefaultModel = "gemini-2.0-flash"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	limiter          *rate.Limiter
}

// NewClient builds a Gemini client. batchInterval spaces out consecutive
// calls so long runs stay inside the free tier rate limits; zero disables
// the pacing.
func NewClient(apiKey, model string, retryAttempts uint, batchInterval time.Duration) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL("https://generativelanguage.googleapis.com/v1beta")
	httpClient.SetHeader("x-goog-api-key", apiKey)
	httpClient.SetHeader("Content-Type", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if batchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(batchInterval), 1)
	}

	return &Client{
		httpClient:       httpClient,
		model:            model,
		maxRetryAttempts: retryAttempts,
		limiter:          limiter,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
	ResponseID string      `json:"responseId"`
	Usage      usage       `json:"usageMetadata"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// cardItem mirrors one element of the JSON array the prompt requests.
type cardItem struct {
	Definition   string       `json:"definition"`
	Gloss        string       `json:"gloss"`
	Notes        string       `json:"notes"`
	Ambiguity    string       `json:"ambiguity"`
	Sense        string       `json:"sense"`
	Domain       string       `json:"domain"`
	Register     string       `json:"register"`
	Alternatives stringList   `json:"alternatives"`
	FalseFriend  stringOrBool `json:"false_friend"`
	Collocations stringList   `json:"collocations"`
	Anchor       string       `json:"anchor"`
	Confidence   float64      `json:"confidence"`
}

// stringList accepts both a JSON array of strings and a single bare string.
// The model occasionally collapses one-element lists.
type stringList []string

func (list *stringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*list = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("json.Unmarshal(%s) > %w", data, err)
	}
	*list = stringList{single}
	return nil
}

// stringOrBool accepts "false"/"true" booleans and free-form warning strings.
type stringOrBool string

func (value *stringOrBool) UnmarshalJSON(data []byte) error {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		if flag {
			*value = "true"
		} else {
			*value = ""
		}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("json.Unmarshal(%s) > %w", data, err)
	}
	*value = stringOrBool(text)
	return nil
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to truncated responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// GenerateCards implements the inference.Client interface
func (client *Client) GenerateCards(
	ctx context.Context,
	request inference.GenerateCardsRequest,
) (inference.GenerateCardsResponse, error) {
	var result inference.GenerateCardsResponse
	var fatalErr error
	attempts := uint(0)
	if err := retry.Do(
		func() error {
			attempts++
			if err := client.limiter.Wait(ctx); err != nil {
				fatalErr = fmt.Errorf("limiter.Wait > %w", err)
				return retry.Unrecoverable(fatalErr)
			}
			response, err := client.generateCards(ctx, request)
			if err != nil {
				if !isRetryableError(err) {
					fatalErr = err
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		var alignmentErr *inference.AlignmentError
		if errors.As(fatalErr, &alignmentErr) {
			return inference.GenerateCardsResponse{}, alignmentErr
		}
		if fatalErr != nil {
			return inference.GenerateCardsResponse{}, fatalErr
		}
		return inference.GenerateCardsResponse{}, &inference.TransientCallError{Attempts: attempts, Err: err}
	}
	return result, nil
}

func (client *Client) generateCards(
	ctx context.Context,
	request inference.GenerateCardsRequest,
) (inference.GenerateCardsResponse, error) {
	if len(request.Words) == 0 {
		return inference.GenerateCardsResponse{}, nil
	}

	prompt := buildPrompt(request)
	requestBody := generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&generateContentResponse{}).
		Post("/models/" + client.model + ":generateContent")
	if err != nil {
		return inference.GenerateCardsResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.GenerateCardsResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*generateContentResponse)
	if responseBody == nil || len(responseBody.Candidates) == 0 {
		return inference.GenerateCardsResponse{}, fmt.Errorf("empty response body or candidates: %s", response.String())
	}

	candidateParts := responseBody.Candidates[0].Content.Parts
	if len(candidateParts) == 0 || candidateParts[0].Text == "" {
		return inference.GenerateCardsResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}

	responseText := extractJSON(candidateParts[0].Text)
	slog.Default().Debug("gemini response content",
		"model", client.model,
		"words", len(request.Words),
		"promptTokens", responseBody.Usage.PromptTokenCount,
		"candidateTokens", responseBody.Usage.CandidatesTokenCount,
	)

	var items []cardItem
	if err := json.Unmarshal([]byte(responseText), &items); err != nil {
		slog.Default().Error("Failed to parse Gemini response as JSON",
			"wordCount", len(request.Words),
			"error", err)
		return inference.GenerateCardsResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", responseText, err)
	}

	// A parseable response of the wrong length can never be matched back to
	// the words; retrying would burn quota on the same confusion.
	if len(items) != len(request.Words) {
		return inference.GenerateCardsResponse{}, &inference.AlignmentError{
			Requested: len(request.Words),
			Received:  len(items),
		}
	}

	results := make([]inference.CardResult, len(items))
	for i, item := range items {
		definition := strings.TrimSpace(item.Definition)
		gloss := strings.TrimSpace(item.Gloss)
		if definition == "" || gloss == "" {
			results[i] = inference.CardResult{FailureReason: "incomplete payload"}
			continue
		}
		results[i] = inference.CardResult{
			Payload: inference.CardPayload{
				Definition: definition,
				Gloss:      gloss,
				Notes: BuildNotesLine(CardMetadata{
					Notes:        item.Notes,
					Ambiguity:    item.Ambiguity,
					Sense:        item.Sense,
					Domain:       item.Domain,
					Register:     item.Register,
					Alternatives: item.Alternatives,
					FalseFriend:  string(item.FalseFriend),
					Collocations: item.Collocations,
					Anchor:       item.Anchor,
					Confidence:   item.Confidence,
				}),
			},
		}
	}

	callID := responseBody.ResponseID
	if callID == "" {
		callID = fmt.Sprintf("gemini-%d", time.Now().UnixNano())
	}
	return inference.GenerateCardsResponse{Results: results, CallID: callID}, nil
}

// extractJSON strips a surrounding markdown code fence when the model adds
// one despite the prompt asking for bare JSON.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```json"); ok {
		text = rest
	} else if rest, ok := strings.CutPrefix(text, "```"); ok {
		text = rest
	} else {
		return text
	}
	if body, _, ok := strings.Cut(text, "```"); ok {
		text = body
	}
	return strings.TrimSpace(text)
}
