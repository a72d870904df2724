// internal/forecast/openai.go
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultAdvisorTimeout = 30 * time.Second

// OpenAIAdvisor calls an OpenAI-compatible chat-completions endpoint to refine
// the 7-day forecast and produce explanations. Every response is treated as
// hostile input: it is parsed defensively and any deviation is returned as an
// error so the caller can fall back.
type OpenAIAdvisor struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIAdvisor(endpoint, apiKey, model string, timeout time.Duration) *OpenAIAdvisor {
	if timeout <= 0 {
		timeout = defaultAdvisorTimeout
	}

	return &OpenAIAdvisor{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *OpenAIAdvisor) Forecast7Days(ctx context.Context, req Request) ([]float64, error) {
	prompt := buildForecastPrompt(req)

	content, err := a.chat(ctx, prompt)
	if err != nil {
		return nil, &domain.ExternalServiceFailure{Service: "forecast advisor", Err: err}
	}

	values, err := parseForecastArray(content)
	if err != nil {
		log.Warn().Err(err).Str("product", req.ProductName).Msg("advisor forecast rejected")
		return nil, &domain.ExternalServiceFailure{Service: "forecast advisor", Err: err}
	}

	return values, nil
}

func (a *OpenAIAdvisor) Explain(ctx context.Context, req Request) (*Explanation, error) {
	prompt := buildExplainPrompt(req)

	content, err := a.chat(ctx, prompt)
	if err != nil {
		return nil, &domain.ExternalServiceFailure{Service: "forecast advisor", Err: err}
	}

	expl, err := parseExplanation(content)
	if err != nil {
		log.Warn().Err(err).Str("product", req.ProductName).Msg("advisor explanation rejected")
		return nil, &domain.ExternalServiceFailure{Service: "forecast advisor", Err: err}
	}

	return expl, nil
}

func (a *OpenAIAdvisor) chat(ctx context.Context, prompt string) (string, error) {
	url := a.endpoint + "/chat/completions"

	body, err := json.Marshal(chatCompletionRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an inventory replenishment analyst. Answer with JSON only, no prose around it."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("advisor call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read advisor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advisor returned status %d", resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode advisor response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("advisor response has no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func buildForecastPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s (today is %s)\n", req.ProductName, req.CurrentDate)
	fmt.Fprintf(&b, "Average daily sales: %.2f units, weekly: %.2f units\n", req.AvgDailySales, req.AvgWeeklySales)
	fmt.Fprintf(&b, "Sales trend: %s (%.1f%%), coefficient of variation %.2f\n", req.Trend, req.TrendPercent, req.Variability)
	fmt.Fprintf(&b, "Weekday distribution (%% of volume): %s\n", formatWeekdayPattern(req.WeekdayPattern))
	fmt.Fprintf(&b, "Peak weekday: %s\n", req.PeakWeekday)
	fmt.Fprintf(&b, "Supplier lead time: %.1f days, reliability score %.0f/100\n", req.LeadTimeDays, req.ReliabilityScore)
	b.WriteString("Predict unit sales for each of the next 7 calendar days. ")
	b.WriteString("Reply with a JSON array of exactly 7 non-negative numbers and nothing else.")
	return b.String()
}

func buildExplainPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s (today is %s)\n", req.ProductName, req.CurrentDate)
	fmt.Fprintf(&b, "Current stock: %.0f units, projected stock-out in %.1f days\n", req.CurrentStock, req.DaysUntilStockout)
	fmt.Fprintf(&b, "Urgency: %s, recommended order quantity: %d units\n", req.Urgency, req.RecommendedQty)
	fmt.Fprintf(&b, "Supplier lead time %.1f days, reliability %.0f/100\n", req.LeadTimeDays, req.ReliabilityScore)
	fmt.Fprintf(&b, "Sales trend %s (%.1f%%), variability %.2f\n", req.Trend, req.TrendPercent, req.Variability)
	b.WriteString(`Explain the recommendation in 2-3 sentences and list the main risks. `)
	b.WriteString(`Reply with a JSON object {"reasoning": string, "riskFactors": [string]} and nothing else.`)
	return b.String()
}

func formatWeekdayPattern(pattern map[string]float64) string {
	days := make([]string, 0, len(pattern))
	for d := range pattern {
		days = append(days, d)
	}
	sort.Strings(days)

	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", d, pattern[d]))
	}
	return strings.Join(parts, ", ")
}

// parseForecastArray extracts the first well-formed JSON array from content
// and validates it as a 7-day forecast: exactly 7 numeric, non-negative
// values. Models wrap answers in prose and code fences often enough that
// scanning for the array is the only reliable approach.
func parseForecastArray(content string) ([]float64, error) {
	raw, err := extractJSON(content, '[', ']')
	if err != nil {
		return nil, err
	}

	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("forecast array is not numeric: %w", err)
	}

	if len(values) != ForecastDays {
		return nil, fmt.Errorf("forecast has %d values, want %d", len(values), ForecastDays)
	}
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("forecast value %d is negative (%.2f)", i, v)
		}
	}

	return values, nil
}

func parseExplanation(content string) (*Explanation, error) {
	raw, err := extractJSON(content, '{', '}')
	if err != nil {
		return nil, err
	}

	var expl Explanation
	if err := json.Unmarshal([]byte(raw), &expl); err != nil {
		return nil, fmt.Errorf("explanation is not a valid object: %w", err)
	}

	if strings.TrimSpace(expl.Reasoning) == "" {
		return nil, fmt.Errorf("explanation has empty reasoning")
	}

	return &expl, nil
}

// extractJSON returns the first balanced open..close span in content,
// ignoring brackets inside JSON strings.
func extractJSON(content string, open, close byte) (string, error) {
	start := strings.IndexByte(content, open)
	if start < 0 {
		return "", fmt.Errorf("no %q found in advisor reply", string(open))
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced %q in advisor reply", string(open))
}
