// Package client is a Go client for the banter HTTP API plus a local
// message cache that reconciles against server state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

// APIError is a non-2xx response decoded from the server's error
// payload. Message falls back to a generic string when the body is not
// parseable.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

type API struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// SetToken sets the bearer token used on subsequent requests.
func (a *API) SetToken(token string) {
	a.token = token
}

func (a *API) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := a.do(ctx, http.MethodGet, "/api/v1/channels", nil, &channels)
	return channels, err
}

func (a *API) ListMessages(ctx context.Context, channelID uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	err := a.do(ctx, http.MethodGet, "/api/v1/channels/"+channelID.String()+"/messages", nil, &messages)
	return messages, err
}

func (a *API) SendMessage(ctx context.Context, channelID uuid.UUID, content string) (*domain.Message, error) {
	var msg domain.Message
	body := map[string]string{"content": content}
	if err := a.do(ctx, http.MethodPost, "/api/v1/channels/"+channelID.String()+"/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *API) EditMessage(ctx context.Context, messageID uuid.UUID, content string) (*domain.Message, error) {
	var msg domain.Message
	body := map[string]string{"content": content}
	if err := a.do(ctx, http.MethodPatch, "/api/v1/messages/"+messageID.String(), body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *API) DeleteMessage(ctx context.Context, messageID uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, "/api/v1/messages/"+messageID.String(), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
	} else {
		apiErr.Code = "UNKNOWN"
		apiErr.Message = "request failed"
	}
	return apiErr
}
