package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// fakeClient returns a canned answer (or error) and records the
// questions it was asked.
type fakeClient struct {
	answer    string
	err       error
	questions []string
}

func (f *fakeClient) Ask(_ context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	return f.answer, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract_WellFormedAnswer(t *testing.T) {
	client := &fakeClient{answer: `{"brand":"Apple","model":"iPhone 13"}`}
	e := NewExtractor(client, discardLogger())

	bm := e.Extract(context.Background(), "iPhone 13")
	if bm == nil {
		t.Fatalf("expected brand/model, got nil")
	}
	if bm.Brand != "Apple" || bm.Model != "iPhone 13" {
		t.Fatalf("unexpected brand/model: %+v", bm)
	}
}

func TestExtract_PromptContainsProductName(t *testing.T) {
	client := &fakeClient{answer: `{"brand":"Apple","model":"iPhone 13"}`}
	e := NewExtractor(client, discardLogger())

	e.Extract(context.Background(), "iPhone 13")

	if len(client.questions) != 1 {
		t.Fatalf("expected exactly 1 question, got %d", len(client.questions))
	}
	if !strings.HasPrefix(client.questions[0], "iPhone 13 ") {
		t.Fatalf("expected question to start with the product name, got %q", client.questions[0])
	}
}

func TestExtract_SingleQuotedMarkdownAnswer(t *testing.T) {
	client := &fakeClient{answer: "```json\n{'brand':'Apple','model':'iPhone 13'}\n```"}
	e := NewExtractor(client, discardLogger())

	bm := e.Extract(context.Background(), "iPhone 13")
	if bm == nil {
		t.Fatalf("expected brand/model from markdown-wrapped answer, got nil")
	}
	if bm.Brand != "Apple" || bm.Model != "iPhone 13" {
		t.Fatalf("unexpected brand/model: %+v", bm)
	}
}

func TestExtract_EmptyAnswerIsNotFound(t *testing.T) {
	client := &fakeClient{answer: ""}
	e := NewExtractor(client, discardLogger())

	if bm := e.Extract(context.Background(), "iPhone 13"); bm != nil {
		t.Fatalf("expected nil for empty answer, got %+v", bm)
	}
}

func TestExtract_TransportErrorIsNotFound(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	e := NewExtractor(client, discardLogger())

	if bm := e.Extract(context.Background(), "iPhone 13"); bm != nil {
		t.Fatalf("expected nil on transport error, got %+v", bm)
	}
}

func TestExtract_UnparseableAnswerIsNotFound(t *testing.T) {
	client := &fakeClient{answer: "I could not determine the brand."}
	e := NewExtractor(client, discardLogger())

	if bm := e.Extract(context.Background(), "mystery gadget"); bm != nil {
		t.Fatalf("expected nil for unparseable answer, got %+v", bm)
	}
}

func TestExtract_IdenticalAnswersYieldIdenticalResults(t *testing.T) {
	client := &fakeClient{answer: `{'brand':'Samsung','model':'Galaxy S23'}`}
	e := NewExtractor(client, discardLogger())

	first := e.Extract(context.Background(), "Galaxy S23")
	second := e.Extract(context.Background(), "Galaxy S23")
	if first == nil || second == nil {
		t.Fatalf("expected both extractions to succeed, got %v and %v", first, second)
	}
	if *first != *second {
		t.Fatalf("expected identical results, got %+v and %+v", *first, *second)
	}
}

func TestCleanAnswer_SubstitutionSet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "backticks stripped", input: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "single quotes become double", input: "{'brand':'X'}", want: `{"brand":"X"}`},
		{name: "upper JSON removed", input: `JSON{"a":1}`, want: `{"a":1}`},
		{name: "lower json removed", input: `json {"a":1}`, want: ` {"a":1}`},
		{name: "all at once", input: "```json\n{'a':1}```", want: "\n{\"a\":1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanAnswer(tt.input); got != tt.want {
				t.Fatalf("CleanAnswer(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
