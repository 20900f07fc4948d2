package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type scoreCard struct {
	Score   int      `json:"score"`
	Comment string   `json:"comment"`
	Tags    []string `json:"tags"`
}

func scoreContract() *Contract {
	return &Contract{
		Name: "ScoreCard",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score":   {Type: genai.TypeInteger, Minimum: genai.Ptr[float64](1), Maximum: genai.Ptr[float64](10)},
				"comment": {Type: genai.TypeString, MinLength: genai.Ptr[int64](1)},
				"tags":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"score", "comment"},
		},
	}
}

func TestContractDecode(t *testing.T) {
	var card scoreCard
	err := scoreContract().Decode(`{"score": 7, "comment": "solid", "tags": ["go", "sql"]}`, &card)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if card.Score != 7 {
		t.Fatalf("expected score 7, got %d", card.Score)
	}
	if card.Comment != "solid" {
		t.Fatalf("unexpected comment: %q", card.Comment)
	}
	if len(card.Tags) != 2 || card.Tags[1] != "sql" {
		t.Fatalf("unexpected tags: %+v", card.Tags)
	}
}

func TestContractDecodeHandlesCodeBlock(t *testing.T) {
	raw := "```json\n{\"score\": 3, \"comment\": \"thin\"}\n```"

	var card scoreCard
	if err := scoreContract().Decode(raw, &card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if card.Score != 3 {
		t.Fatalf("expected score 3, got %d", card.Score)
	}
}

func TestContractDecodeViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		reason string
	}{
		{name: "empty", raw: "   ", reason: "empty response"},
		{name: "not json", raw: "the grade is 7", reason: "invalid json"},
		{name: "not an object", raw: `[1, 2]`, reason: "expected object"},
		{name: "missing required", raw: `{"comment": "ok"}`, reason: "score missing required field"},
		{name: "null required", raw: `{"score": null, "comment": "ok"}`, reason: "score missing required field"},
		{name: "wrong type", raw: `{"score": "seven", "comment": "ok"}`, reason: "score expected integer"},
		{name: "fractional", raw: `{"score": 7.5, "comment": "ok"}`, reason: "score expected integer"},
		{name: "below minimum", raw: `{"score": 0, "comment": "ok"}`, reason: "below minimum"},
		{name: "above maximum", raw: `{"score": 11, "comment": "ok"}`, reason: "above maximum"},
		{name: "blank string", raw: `{"score": 5, "comment": "  "}`, reason: "comment shorter than 1 characters"},
		{name: "bad item", raw: `{"score": 5, "comment": "ok", "tags": ["go", 1]}`, reason: "tags[1] expected string"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var card scoreCard
			err := scoreContract().Decode(tc.raw, &card)
			if !errors.Is(err, ErrContractViolation) {
				t.Fatalf("expected contract violation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected %q in error, got %q", tc.reason, err.Error())
			}
		})
	}
}

func TestContractDecodeAllowsMissingOptional(t *testing.T) {
	var card scoreCard
	if err := scoreContract().Decode(`{"score": 10, "comment": "great", "tags": null}`, &card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if card.Tags != nil {
		t.Fatalf("expected no tags, got %+v", card.Tags)
	}
}

type stubOracle struct {
	response   string
	err        error
	lastPrompt string
	lastSchema *genai.Schema
}

func (s *stubOracle) GenerateStructured(_ context.Context, prompt string, schema *genai.Schema) (string, error) {
	s.lastPrompt = prompt
	s.lastSchema = schema
	return s.response, s.err
}

func TestAsk(t *testing.T) {
	oracle := &stubOracle{response: `{"score": 8, "comment": "nice"}`}
	contract := scoreContract()

	var card scoreCard
	if err := Ask(context.Background(), oracle, "rate it", contract, &card); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if oracle.lastPrompt != "rate it" {
		t.Fatalf("unexpected prompt: %q", oracle.lastPrompt)
	}
	if oracle.lastSchema != contract.Schema {
		t.Fatalf("expected contract schema to be sent")
	}
	if card.Score != 8 {
		t.Fatalf("expected score 8, got %d", card.Score)
	}
}

func TestAskPropagatesOracleError(t *testing.T) {
	oracle := &stubOracle{err: errors.New("boom")}

	var card scoreCard
	err := Ask(context.Background(), oracle, "rate it", scoreContract(), &card)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected oracle error, got %v", err)
	}
}
