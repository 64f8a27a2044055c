// Package extract turns free-form patient messages into structured booking
// fields. Extraction is best-effort: any field may come back empty and
// callers must re-prompt rather than fail.
package extract

import (
	"context"
	"regexp"
	"strings"
)

// Field names recognized by extractors.
const (
	FieldName             = "name"
	FieldDOB              = "dob"
	FieldDoctor           = "doctor"
	FieldDate             = "date"
	FieldInsuranceCompany = "insurance_company"
	FieldMemberID         = "member_id"
)

// GreetingSchema lists the fields collected at the greeting stage.
var GreetingSchema = []string{FieldName, FieldDOB, FieldDoctor}

// SchedulingSchema lists the fields collected at the scheduling stage.
var SchedulingSchema = []string{FieldDate}

// InsuranceSchema lists the fields collected at the insurance stage.
var InsuranceSchema = []string{FieldInsuranceCompany, FieldMemberID}

// Fields is a partial record of extracted values. The zero value of any
// field means "not found".
type Fields struct {
	Name             string `json:"name,omitempty"`
	DOB              string `json:"dob,omitempty"`
	Doctor           string `json:"doctor,omitempty"`
	Date             string `json:"date,omitempty"`
	InsuranceCompany string `json:"insurance_company,omitempty"`
	MemberID         string `json:"member_id,omitempty"`
}

// Empty reports whether nothing was extracted.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// Extractor pulls structured fields out of free text. Implementations are
// fallible and non-deterministic; callers tolerate empty results and errors
// the same way.
type Extractor interface {
	Extract(ctx context.Context, text string, schema []string) (Fields, error)
}

var (
	namePattern = regexp.MustCompile(`(?i)(?:i'?m|i am|my name is|this is|name[:\s]+)\s+([A-Za-z]+(?:\s+[A-Za-z]+){0,2})`)
	dobPattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	// "Dr. Smith", "doctor Johnson"
	doctorPattern    = regexp.MustCompile(`(?i)\b(?:dr\.?|doctor)\s+([A-Za-z]+)`)
	memberIDPattern  = regexp.MustCompile(`(?i)\b(?:member\s*id|member\s*number|id)[:\s]+([A-Za-z0-9-]+)`)
	insurancePattern = regexp.MustCompile(`(?i)\b(?:insurance(?:\s+company)?(?:\s+is)?|insured with|covered by)[:\s]+([A-Za-z][A-Za-z ]*[A-Za-z])`)
)

// RuleExtractor is the offline extractor used when no LLM is configured.
// It recognizes the common phrasings the booking flow prompts for.
type RuleExtractor struct{}

// NewRuleExtractor creates a rule-based extractor.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract applies field-specific patterns for each requested schema field.
func (e *RuleExtractor) Extract(ctx context.Context, text string, schema []string) (Fields, error) {
	var out Fields
	for _, field := range schema {
		switch field {
		case FieldName:
			out.Name = extractName(text)
		case FieldDOB:
			if m := dobPattern.FindStringSubmatch(text); m != nil {
				out.DOB = m[1]
			}
		case FieldDoctor:
			if m := doctorPattern.FindStringSubmatch(text); m != nil {
				out.Doctor = "Dr. " + capitalize(m[1])
			}
		case FieldDate:
			if date, ok := ParseDate(text, nowFunc()); ok {
				out.Date = date
			}
		case FieldInsuranceCompany:
			if m := insurancePattern.FindStringSubmatch(text); m != nil {
				out.InsuranceCompany = strings.TrimSpace(m[1])
			}
		case FieldMemberID:
			if m := memberIDPattern.FindStringSubmatch(text); m != nil {
				out.MemberID = strings.ToUpper(m[1])
			}
		}
	}

	// Insurance stage messages are often "<company> <id>" with no keywords.
	if contains(schema, FieldInsuranceCompany) && out.InsuranceCompany == "" {
		out.InsuranceCompany, out.MemberID = splitInsurance(text, out.MemberID)
	}

	return out, nil
}

func extractName(text string) string {
	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	// The pattern is greedy; trim trailing words that start other clauses.
	words := strings.Fields(name)
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		switch strings.ToLower(w) {
		case "born", "and", "with", "dob", "dr", "doctor":
			return strings.Join(cleaned, " ")
		}
		cleaned = append(cleaned, capitalize(w))
	}
	return strings.Join(cleaned, " ")
}

// splitInsurance handles bare "Star Health SH456" style input. The last
// token is treated as a member ID when it carries a digit.
func splitInsurance(text, memberID string) (string, string) {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return "", memberID
	}
	last := words[len(words)-1]
	if memberID == "" && len(words) > 1 && strings.ContainsAny(last, "0123456789") {
		return strings.Join(words[:len(words)-1], " "), strings.ToUpper(last)
	}
	return strings.Join(words, " "), memberID
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func contains(schema []string, field string) bool {
	for _, f := range schema {
		if f == field {
			return true
		}
	}
	return false
}

// Ensure interface compliance
var _ Extractor = (*RuleExtractor)(nil)
