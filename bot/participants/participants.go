// Package participants validates the "ФИО, телеграмм, телефон" batches
// buyers type in when booking a tariff.
package participants

import (
	"fmt"
	"strings"
)

// Participant is one validated batch entry.
type Participant struct {
	FullName string `json:"full_name" db:"full_name"`
	Telegram string `json:"telegram" db:"telegram"`
	Phone    string `json:"phone" db:"phone"`
}

// FieldError describes why one line of the batch was rejected.
// Line is 1-based; 0 means the error concerns the batch as a whole.
type FieldError struct {
	Line   int
	Reason string
}

func (e FieldError) Error() string {
	if e.Line == 0 {
		return e.Reason
	}
	return fmt.Sprintf("участник %d: %s", e.Line, e.Reason)
}

// Render formats the error for the chat reply.
func (e FieldError) Render() string {
	if e.Line == 0 {
		return "❌ " + e.Reason
	}
	return fmt.Sprintf("❌ Участник %d: %s", e.Line, e.Reason)
}

const (
	reasonFormat     = "неправильный формат. Нужно: ФИО, телеграмм, телефон"
	reasonShortName  = "ФИО слишком короткое"
	reasonBadPhone   = "неверный формат телефона"
	minPhoneDigits   = 10
	minFullNameRunes = 2
)

// ParseBatch validates raw multi-line input against the required
// participant count. Each non-empty line is one candidate. A count
// mismatch rejects the whole batch, including for required == 1.
// Handles not starting with @ fall back to the submitter's handle when
// one is known. Any error means no participants are returned.
func ParseBatch(raw string, required int, fallbackHandle string) ([]Participant, []FieldError) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) != required {
		return nil, []FieldError{{
			Reason: fmt.Sprintf("нужно указать ровно %d участника(-ов), указано %d", required, len(lines)),
		}}
	}

	var (
		parsed []Participant
		errs   []FieldError
	)
	for i, line := range lines {
		p, fieldErrs := parseLine(line, i+1, fallbackHandle)
		if len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			continue
		}
		parsed = append(parsed, p)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return parsed, nil
}

func parseLine(line string, num int, fallbackHandle string) (Participant, []FieldError) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Participant{}, []FieldError{{Line: num, Reason: reasonFormat}}
	}

	fullName := strings.TrimSpace(parts[0])
	telegram := strings.TrimSpace(parts[1])
	phone := strings.TrimSpace(parts[2])

	var errs []FieldError
	if len([]rune(fullName)) < minFullNameRunes {
		errs = append(errs, FieldError{Line: num, Reason: reasonShortName})
	}

	if !strings.HasPrefix(telegram, "@") && fallbackHandle != "" {
		telegram = "@" + strings.TrimPrefix(fallbackHandle, "@")
	}

	if !validPhone(phone) {
		errs = append(errs, FieldError{Line: num, Reason: reasonBadPhone})
	}

	if len(errs) > 0 {
		return Participant{}, errs
	}
	return Participant{FullName: fullName, Telegram: telegram, Phone: phone}, nil
}

// validPhone accepts digits with at most one leading +, at least 10
// characters total.
func validPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if digits == "" || strings.ContainsAny(digits, "+") {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(phone) >= minPhoneDigits
}
