package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCallRecord
	queue map[string][]fakeResponse
}

type modelCallRecord struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

func newFakeModels() *fakeModels {
	return &fakeModels{queue: make(map[string][]fakeResponse)}
}

func (f *fakeModels) enqueue(model string, resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[model] = append(f.queue[model], fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	responses := f.queue[model]
	if len(responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := responses[0]
	f.queue[model] = responses[1:]
	f.calls = append(f.calls, modelCallRecord{model: model, contents: contents, config: config})
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func noWait(t *testing.T) {
	t.Helper()
	original := waitFor
	waitFor = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { waitFor = original })
}

func TestGeneratorSendsSchema(t *testing.T) {
	models := newFakeModels()
	models.enqueue("gemini-pro", textResponse(`{"grade": 7}`), nil)

	g := newGenerator(models, "gemini-pro", 1, 0, zap.NewNop())
	schema := &genai.Schema{Type: genai.TypeObject}

	output, err := g.GenerateStructured(context.Background(), "  grade it  ", schema)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != `{"grade": 7}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected mime type: %q", call.config.ResponseMIMEType)
	}
	if call.config.ResponseSchema != schema {
		t.Fatalf("expected schema to be passed through")
	}
	if call.config.Temperature == nil || *call.config.Temperature != 0 {
		t.Fatalf("expected zero temperature")
	}
	if got := call.contents[0].Parts[0].Text; got != "grade it" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestGeneratorJoinsParts(t *testing.T) {
	models := newFakeModels()
	models.enqueue(defaultModel, &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "first"}, nil, {Text: "  "}, {Text: "second"}}}},
		},
	}, nil)

	g := newGenerator(models, "", 1, 0, nil)

	output, err := g.GenerateStructured(context.Background(), "prompt", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "first\nsecond" {
		t.Fatalf("unexpected output: %q", output)
	}

	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
}

func TestGeneratorRejectsEmpty(t *testing.T) {
	models := newFakeModels()
	models.enqueue("gemini-pro", &genai.GenerateContentResponse{}, nil)

	g := newGenerator(models, "gemini-pro", 1, 0, zap.NewNop())

	if _, err := g.GenerateStructured(context.Background(), "   ", nil); err == nil {
		t.Fatal("expected error for empty prompt")
	}

	if _, err := g.GenerateStructured(context.Background(), "prompt", nil); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	noWait(t)

	models := newFakeModels()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models.enqueue("gemini-pro", nil, tempErr)
	models.enqueue("gemini-pro", textResponse("retry ok"), nil)

	g := newGenerator(models, "gemini-pro", 2, 0, zap.NewNop())

	output, err := g.GenerateStructured(context.Background(), "message", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noWait(t)

	models := newFakeModels()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models.enqueue("gemini-pro", nil, tempErr)
	models.enqueue("gemini-pro", nil, tempErr)

	g := newGenerator(models, "gemini-pro", 2, 0, zap.NewNop())

	_, err := g.GenerateStructured(context.Background(), "msg", nil)
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped api error, got %v", err)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := newFakeModels()
	quotaErr := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}
	models.enqueue("gemini-pro", nil, quotaErr)

	g := newGenerator(models, "gemini-pro", 3, 0, zap.NewNop())

	if _, err := g.GenerateStructured(context.Background(), "msg", nil); err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryOnClientError(t *testing.T) {
	models := newFakeModels()
	models.enqueue("gemini-pro", nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := newGenerator(models, "gemini-pro", 3, 0, zap.NewNop())

	if _, err := g.GenerateStructured(context.Background(), "msg", nil); err == nil {
		t.Fatal("expected error for invalid argument")
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		err       error
		attempt   int
		delay     time.Duration
		retryable bool
	}{
		{name: "plain error", err: errors.New("boom"), attempt: 1},
		{name: "server error", err: genai.APIError{Code: http.StatusServiceUnavailable}, attempt: 2, delay: 2 * retryBaseDelay, retryable: true},
		{name: "quota without hint", err: genai.APIError{Code: http.StatusTooManyRequests}, attempt: 1, delay: retryBaseDelay, retryable: true},
		{name: "quota short hint", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry in 5s"}, attempt: 1, delay: 5 * time.Second, retryable: true},
		{name: "quota long hint", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "retry after 45 seconds"}, attempt: 1},
		{name: "not found", err: genai.APIError{Code: http.StatusNotFound}, attempt: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			delay, retryable := retryDelay(tc.err, tc.attempt)
			if retryable != tc.retryable {
				t.Fatalf("expected retryable=%v, got %v", tc.retryable, retryable)
			}
			if delay != tc.delay {
				t.Fatalf("expected delay %v, got %v", tc.delay, delay)
			}
		})
	}
}
