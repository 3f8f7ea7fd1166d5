package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	maxChatMessages     = 20
	maxChatMessageChars = 4000
)

const agentSystemPrompt = `You are the IslaPOS assistant, built into a restaurant point-of-sale system.

You help restaurant owners and managers with:
1. Setting up menus, floor plans, tables and staff
2. Using the POS terminal, kitchen display and time clock
3. Delivery integrations and edge gateway pairing
4. Reading sales and order information they describe to you

Rules:
- Answer concisely and practically
- If you are unsure how IslaPOS handles something, say so
- Never ask for or repeat passwords, PINs or payment card numbers
- Reply in the language the user writes in`

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AgentConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AgentService forwards a conversation to an OpenAI-compatible chat
// completions endpoint.
type AgentService struct {
	cfg    AgentConfig
	client *http.Client
}

func NewAgentService(cfg AgentConfig) *AgentService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AgentService{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat returns the assistant reply to messages.
func (s *AgentService) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	history, err := trimHistory(messages)
	if err != nil {
		return "", err
	}
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: assistant is not configured", ErrUpstream)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       s.cfg.Model,
		Messages:    append([]ChatMessage{{Role: "system", Content: agentSystemPrompt}}, history...),
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("chat completion failed", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: chat API returned %d", ErrUpstream, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse chat response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from chat API", ErrUpstream)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// trimHistory keeps the last user/assistant turns and caps each message.
func trimHistory(messages []ChatMessage) ([]ChatMessage, error) {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if r := []rune(content); len(r) > maxChatMessageChars {
			content = string(r[:maxChatMessageChars])
		}
		out = append(out, ChatMessage{Role: role, Content: content})
	}
	if len(out) > maxChatMessages {
		out = out[len(out)-maxChatMessages:]
	}
	if len(out) == 0 || out[len(out)-1].Role != "user" {
		return nil, invalidf("messages must end with a user message")
	}
	return out, nil
}
