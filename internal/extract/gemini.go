package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiExtractor implements Extractor using Google's Gemini API.
type GeminiExtractor struct {
	client  *genai.Client
	modelID string
}

// NewGeminiExtractor creates a Gemini-backed field extractor.
func NewGeminiExtractor(ctx context.Context, apiKey, modelID string) (*GeminiExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("extract: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("extract: failed to create gemini client: %w", err)
	}

	return &GeminiExtractor{client: client, modelID: modelID}, nil
}

// Extract asks the model for a JSON object with the schema's fields. A
// malformed model response yields zero Fields and an error; callers treat
// that the same as "nothing found".
func (e *GeminiExtractor) Extract(ctx context.Context, text string, schema []string) (Fields, error) {
	model := e.client.GenerativeModel(e.modelID)
	model.SetTemperature(0)

	prompt := buildPrompt(text, schema)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Fields{}, fmt.Errorf("extract: gemini completion failed: %w", err)
	}

	raw, err := responseText(resp)
	if err != nil {
		return Fields{}, err
	}

	return decodeFields(raw)
}

// Close releases resources held by the Gemini client.
func (e *GeminiExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

func buildPrompt(text string, schema []string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from this patient message: ")
	fmt.Fprintf(&b, "%q\n\n", text)
	b.WriteString("Return a JSON object with exactly these keys, using null for anything not present:\n")
	for _, field := range schema {
		switch field {
		case FieldDOB:
			b.WriteString("  \"dob\": date of birth in YYYY-MM-DD format\n")
		case FieldDate:
			b.WriteString("  \"date\": the requested appointment date in YYYY-MM-DD format; ")
			fmt.Fprintf(&b, "today is %s and relative dates like \"tomorrow\" must be resolved\n", nowFunc().Format("2006-01-02"))
		case FieldDoctor:
			b.WriteString("  \"doctor\": the preferred doctor\n")
		case FieldName:
			b.WriteString("  \"name\": the patient's full name\n")
		case FieldInsuranceCompany:
			b.WriteString("  \"insurance_company\": the insurance company name\n")
		case FieldMemberID:
			b.WriteString("  \"member_id\": the insurance member ID\n")
		default:
			fmt.Fprintf(&b, "  %q\n", field)
		}
	}
	b.WriteString("\nRespond with the JSON object only.")
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("extract: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("extract: gemini returned empty content")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// decodeFields parses the model's JSON reply, tolerating markdown code
// fences and null values.
func decodeFields(raw string) (Fields, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var partial map[string]*string
	if err := json.Unmarshal([]byte(cleaned), &partial); err != nil {
		return Fields{}, fmt.Errorf("extract: failed to decode model response: %w", err)
	}

	get := func(key string) string {
		if v, ok := partial[key]; ok && v != nil {
			return strings.TrimSpace(*v)
		}
		return ""
	}

	return Fields{
		Name:             get(FieldName),
		DOB:              get(FieldDOB),
		Doctor:           get(FieldDoctor),
		Date:             get(FieldDate),
		InsuranceCompany: get(FieldInsuranceCompany),
		MemberID:         get(FieldMemberID),
	}, nil
}

// Ensure interface compliance
var _ Extractor = (*GeminiExtractor)(nil)
