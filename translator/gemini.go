package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/memfsh/memfsh"
	"github.com/memfsh/memfsh/config"
	"github.com/memfsh/memfsh/internal/util"
)

// maxResponseBody is the maximum response body size read from the API.
const maxResponseBody = 1 * 1024 * 1024

// Gemini translates natural language to shell commands with a single
// generateContent call per input.
type Gemini struct {
	model   string
	apiKey  string
	baseURL string
	verbs   []string
	client  *retryablehttp.Client
	logger  zerolog.Logger
}

// NewGemini creates a Gemini translator from cfg. The verbs slice is the
// closed grammar the model may emit; anything outside it is rejected.
// Returns ErrMissingCredential when no API key is configured.
func NewGemini(cfg *config.Config, verbs []string) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.HTTPClient.Timeout = cfg.RequestTimeout
	client.Logger = util.NewLogLogger("translator.http", util.DebugLevel)

	return &Gemini{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		verbs:   verbs,
		client:  client,
		logger:  util.GetLogger("translator.gemini"),
	}, nil
}

// Name implements [memfsh.Translator].
func (g *Gemini) Name() string { return "gemini" }

// Translate implements [memfsh.Translator].
func (g *Gemini) Translate(ctx context.Context, text string) (*memfsh.ParsedCommand, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: text}}},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: g.systemPrompt()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, httpResp.StatusCode, truncate(respBody, 200))
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrUpstream, err)
	}

	reply := firstText(gemResp)
	cmd, err := g.validate(reply)
	if err != nil {
		return nil, err
	}

	g.logger.Debug().Str("input", text).Str("command", cmd.String()).Msg("Translated input")
	return cmd, nil
}

// validate sanitizes the model reply and requires it to start with one of
// the allowed verbs.
func (g *Gemini) validate(reply string) (*memfsh.ParsedCommand, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	cleaned = strings.TrimPrefix(cleaned, "bash")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || strings.HasPrefix(strings.ToUpper(cleaned), "ERROR") {
		return nil, ErrUntranslatable
	}
	// Only the first line counts; models sometimes append commentary.
	if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}

	cmd, ok := memfsh.ParseLine(cleaned, g.verbs)
	if !ok {
		return nil, ErrUntranslatable
	}
	return cmd, nil
}

func (g *Gemini) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You translate user requests into commands for a simulated in-memory filesystem.\n")
	b.WriteString("Reply with exactly one command line and nothing else. No explanations, no code fences.\n")
	b.WriteString("If the request cannot be expressed with the commands below, reply with the single word ERROR.\n\n")
	b.WriteString("AVAILABLE COMMANDS:\n")
	for _, verb := range g.verbs {
		b.WriteString("- ")
		b.WriteString(verb)
		b.WriteByte('\n')
	}
	b.WriteString("\nEXAMPLES:\n")
	b.WriteString(`User: "create a folder called photos" -> mkdir photos` + "\n")
	b.WriteString(`User: "go into documents" -> cd documents` + "\n")
	b.WriteString(`User: "what is in here?" -> ls` + "\n")
	b.WriteString(`User: "delete the temp folder and everything in it" -> rm temp -r` + "\n")
	b.WriteString(`User: "make a file notes.txt saying hello" -> touch notes.txt "hello"` + "\n")
	b.WriteString(`User: "where am I?" -> pwd` + "\n")
	return b.String()
}

func firstText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// --- Gemini API wire types ---

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Compile-time interface check.
var _ memfsh.Translator = (*Gemini)(nil)
