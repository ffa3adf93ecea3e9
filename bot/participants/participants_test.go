package participants

import (
	"strings"
	"testing"
)

func TestParseBatchSingle(t *testing.T) {
	got, errs := ParseBatch("Иванов Иван Иванович, @ivanov, 79991234567", 1, "sender")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(got) != 1 {
		t.Fatalf("got %d participants, want 1", len(got))
	}
	p := got[0]
	if p.FullName != "Иванов Иван Иванович" || p.Telegram != "@ivanov" || p.Phone != "79991234567" {
		t.Fatalf("unexpected participant: %+v", p)
	}
}

func TestParseBatchMultiple(t *testing.T) {
	raw := "Иванов Иван Иванович, @ivanov, 79991234567\nПетрова Анна Сергеевна, @petrova, 79997654321"
	got, errs := ParseBatch(raw, 2, "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(got) != 2 {
		t.Fatalf("got %d participants, want 2", len(got))
	}
	if got[1].Telegram != "@petrova" {
		t.Fatalf("second participant handle = %q", got[1].Telegram)
	}
}

func TestParseBatchCountMismatch(t *testing.T) {
	raw := "Иванов Иван, @ivanov, 79991234567"
	got, errs := ParseBatch(raw, 2, "")
	if got != nil {
		t.Fatalf("participants returned on count mismatch: %+v", got)
	}
	if len(errs) != 1 || errs[0].Line != 0 {
		t.Fatalf("expected a single batch-level error, got %v", errs)
	}
}

func TestParseBatchCountMismatchSingleSeat(t *testing.T) {
	raw := "Иванов Иван, @ivanov, 79991234567\nПетрова Анна, @petrova, 79997654321"
	got, errs := ParseBatch(raw, 1, "")
	if got != nil || len(errs) != 1 || errs[0].Line != 0 {
		t.Fatalf("two lines for a one-seat tariff must fail as a batch, got %v / %v", got, errs)
	}
}

func TestParseBatchHandleFallback(t *testing.T) {
	got, errs := ParseBatch("Иванов Иван, ivanov, 79991234567", 1, "sender")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got[0].Telegram != "@sender" {
		t.Fatalf("handle = %q, want @sender", got[0].Telegram)
	}

	// No submitter handle: the raw value stays as typed.
	got, errs = ParseBatch("Иванов Иван, ivanov, 79991234567", 1, "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got[0].Telegram != "ivanov" {
		t.Fatalf("handle = %q, want ivanov", got[0].Telegram)
	}
}

func TestParseBatchPhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"79991234567", true},
		{"+79991234567", true},
		{"799912345", false},      // too short
		{"7999123456a", false},    // letters
		{"7+9991234567", false},   // embedded plus
		{"++79991234567", false},  // double plus
		{"8 999 123 45 67", false}, // spaces
	}
	for _, tc := range cases {
		_, errs := ParseBatch("Иванов Иван, @ivanov, "+tc.phone, 1, "")
		if tc.ok && len(errs) != 0 {
			t.Errorf("%q: unexpected errors %v", tc.phone, errs)
		}
		if !tc.ok && len(errs) == 0 {
			t.Errorf("%q: expected a phone error", tc.phone)
		}
	}
}

func TestParseBatchAccumulatesErrors(t *testing.T) {
	raw := "И, @ivanov, 123\nИванов Иван, @ivanov, 79991234567\nП, petrova, bad"
	got, errs := ParseBatch(raw, 3, "")
	if got != nil {
		t.Fatalf("participants returned despite errors: %+v", got)
	}
	if len(errs) < 3 {
		t.Fatalf("expected accumulated errors across lines, got %v", errs)
	}
	lines := map[int]bool{}
	for _, e := range errs {
		lines[e.Line] = true
	}
	if !lines[1] || !lines[3] {
		t.Fatalf("errors must reference offending lines, got %v", errs)
	}
	if lines[2] {
		t.Fatalf("valid line reported as invalid: %v", errs)
	}
}

func TestParseBatchWrongFieldCount(t *testing.T) {
	_, errs := ParseBatch("Иванов Иван @ivanov 79991234567", 1, "")
	if len(errs) != 1 || errs[0].Line != 1 {
		t.Fatalf("expected a line-1 format error, got %v", errs)
	}
	if !strings.Contains(errs[0].Reason, "формат") {
		t.Fatalf("unexpected reason %q", errs[0].Reason)
	}
}

func TestFieldErrorRender(t *testing.T) {
	e := FieldError{Line: 2, Reason: "неверный формат телефона"}
	if got := e.Render(); got != "❌ Участник 2: неверный формат телефона" {
		t.Fatalf("render = %q", got)
	}
}
