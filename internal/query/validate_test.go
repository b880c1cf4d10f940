package query

import "testing"

func TestValidateQuizOptionCount(t *testing.T) {
	ok, msg := Validate(UseCaseQuiz, map[string]any{
		"question": "Q", "options": []any{"A"}, "answer": "A",
	})
	if ok {
		t.Fatal("one option must fail")
	}
	if msg == "" {
		t.Fatal("expected a reason")
	}

	ok, _ = Validate(UseCaseQuiz, map[string]any{
		"question": "Q", "options": []any{"A", "B"}, "answer": "A", "explanation": "x",
	})
	if !ok {
		t.Fatal("two options must pass")
	}
}

func TestValidateQuizMissingFields(t *testing.T) {
	cases := []map[string]any{
		{"options": []any{"A", "B"}, "answer": "A"},
		{"question": "Q", "answer": "A"},
		{"question": "Q", "options": []any{"A", "B"}},
		{"question": "Q", "options": "not a list", "answer": "A"},
	}
	for i, data := range cases {
		if ok, _ := Validate(UseCaseQuiz, data); ok {
			t.Fatalf("case %d should fail", i)
		}
	}
}

func TestValidateSummary(t *testing.T) {
	if ok, _ := Validate(UseCaseSummary, map[string]any{"summary": "fine"}); !ok {
		t.Fatal("expected valid")
	}
	if ok, _ := Validate(UseCaseSummary, map[string]any{"summary": "   "}); ok {
		t.Fatal("blank summary must fail")
	}
	if ok, _ := Validate(UseCaseSummary, map[string]any{}); ok {
		t.Fatal("missing summary must fail")
	}
}

func TestValidateFunFact(t *testing.T) {
	if ok, _ := Validate(UseCaseFunFact, map[string]any{"fact": "bees dance", "source": "wikipedia"}); !ok {
		t.Fatal("expected valid")
	}
	if ok, msg := Validate(UseCaseFunFact, map[string]any{"fact": "bees dance"}); ok || msg == "" {
		t.Fatal("missing source must fail with a reason")
	}
}

func TestValidateFreePrompt(t *testing.T) {
	if ok, _ := Validate(UseCaseFreePrompt, map[string]any{"data": "hello"}); !ok {
		t.Fatal("expected valid")
	}
	if ok, _ := Validate(UseCaseFreePrompt, map[string]any{"data": ""}); ok {
		t.Fatal("empty text must fail")
	}
	if ok, _ := Validate(UseCaseFreePrompt, map[string]any{"data": 42}); ok {
		t.Fatal("non-string must fail")
	}
}

func TestValidateUnknownType(t *testing.T) {
	ok, msg := Validate("Haiku", map[string]any{})
	if ok {
		t.Fatal("unknown type must fail")
	}
	if msg != "no validator for type: Haiku" {
		t.Fatalf("msg = %q", msg)
	}
}
