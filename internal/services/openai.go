// OpenAI implementation of [Transcription]
//
// Request/response shapes based on https://platform.openai.com/docs/api-reference
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"golang.org/x/time/rate"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	transcriptionModel = "whisper-1"
	cleanupModel       = "gpt-4"

	cleanupSystemPrompt = "You are a helpful assistant who cleans up and formats transcriptions."
	cleanupUserTemplate = "Please clean up the following transcription by fixing any misspellings, adding line breaks, paragraph breaks, and appropriate punctuation:\n\n%s"
)

// chatMessage is one entry of a chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the /chat/completions request body.
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatCompletionResponse is the subset of the /chat/completions response we read.
type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// transcriptionResponse is the /audio/transcriptions response body.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// apiError is OpenAI's error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIService implements [Transcription] against the OpenAI API.
//
// Cleanup calls are rate limited; each chunk is one blocking round trip.
type OpenAIService struct {
	apiKey       string
	organization string
	project      string
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *log.Logger
}

// NewOpenAIService creates a new OpenAI service with the given credentials.
//
// Expects "api_key" and optionally "organization" and "project".
func NewOpenAIService(credentials map[string]string, logger *log.Logger) (*OpenAIService, error) {
	apiKey, ok := credentials["api_key"]
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("%w: missing api_key in credentials", shared.ErrMissingCredentials)
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &OpenAIService{
		apiKey:       apiKey,
		organization: credentials["organization"],
		project:      credentials["project"],
		baseURL:      openAIBaseURL,
		httpClient:   http.DefaultClient,
		limiter:      rate.NewLimiter(rate.Limit(2), 1),
		logger:       logger,
	}, nil
}

func (s *OpenAIService) Name() string {
	return "OpenAI"
}

// Transcribe uploads the audio file to the transcription endpoint and returns the raw text.
func (s *OpenAIService) Transcribe(ctx context.Context, path string) (string, error) {
	s.logger.Info("transcribing", "file", path)

	audio, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", shared.ErrTranscription, path, err)
	}
	defer audio.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("model", transcriptionModel); err != nil {
		return "", fmt.Errorf("%w: build form: %v", shared.ErrTranscription, err)
	}

	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("%w: build form: %v", shared.ErrTranscription, err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("%w: read %s: %v", shared.ErrTranscription, path, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: build form: %v", shared.ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", shared.ErrTranscription, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	s.setAuthHeaders(req)

	var result transcriptionResponse
	if err := s.do(req, &result); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTranscription, err)
	}

	s.logger.Info("transcribed", "file", path)
	return result.Text, nil
}

// Clean splits text into ordered word-boundary chunks and issues one
// completion call per chunk, joining the cleaned chunks with a newline.
//
// Chunks are cleaned independently with no cross-chunk context; minor
// discontinuities at chunk boundaries are an accepted limitation.
func (s *OpenAIService) Clean(ctx context.Context, text string) (string, error) {
	s.logger.Debug("cleaning text", "length", len(text))

	chunks := SplitChunks(text, GPTChunkSize)
	cleaned := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrCleanup, err)
		}

		out, err := s.complete(ctx, chunk)
		if err != nil {
			s.logger.Error("failed to clean text chunk", "chunk", i+1, "total", len(chunks), "err", err)
			return "", fmt.Errorf("%w: chunk %d of %d: %v", shared.ErrCleanup, i+1, len(chunks), err)
		}
		cleaned = append(cleaned, out)
	}

	return strings.Join(cleaned, "\n"), nil
}

// complete issues a single chat completion call for one chunk.
func (s *OpenAIService) complete(ctx context.Context, chunk string) (string, error) {
	payload := chatCompletionRequest{
		Model: cleanupModel,
		Messages: []chatMessage{
			{Role: "system", Content: cleanupSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(cleanupUserTemplate, chunk)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.setAuthHeaders(req)

	var result chatCompletionResponse
	if err := s.do(req, &result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// setAuthHeaders applies the bearer token and optional org/project scoping.
func (s *OpenAIService) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.organization != "" {
		req.Header.Set("OpenAI-Organization", s.organization)
	}
	if s.project != "" {
		req.Header.Set("OpenAI-Project", s.project)
	}
}

// do executes the request and decodes the JSON response into result.
func (s *OpenAIService) do(req *http.Request, result any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope apiError
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("openai API error: status %d: %s", resp.StatusCode, envelope.Error.Message)
		}
		return fmt.Errorf("openai API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
