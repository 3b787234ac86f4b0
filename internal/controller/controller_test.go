package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeChatService struct {
	sendErr   error
	lastSend  *dto.SendMessageRequest
	cleared   string
	historyOf string
}

func (f *fakeChatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	f.lastSend = req
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &dto.SendMessageResponse{
		Message:  dto.MessageRecord{ID: 1, SessionID: req.SessionID, Content: req.Message, Role: "user"},
		Response: dto.MessageRecord{ID: 2, SessionID: req.SessionID, Content: "hello there", Role: "assistant"},
	}, nil
}

func (f *fakeChatService) Handoff(ctx context.Context, req *dto.HandoffRequest) (*dto.HandoffResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &dto.HandoffResponse{
		Status:            "handoff_initiated",
		Message:           "Your conversation will be transferred to a human agent.",
		Reason:            "User requested human assistance",
		EstimatedWaitTime: "5-10 minutes",
		Event:             dto.MessageRecord{SessionID: req.SessionID, Role: "system"},
	}, nil
}

func (f *fakeChatService) GetHistory(ctx context.Context, sessionID string) (*dto.ChatHistoryResponse, error) {
	f.historyOf = sessionID
	return &dto.ChatHistoryResponse{SessionID: sessionID, Messages: []dto.MessageRecord{}}, nil
}

func (f *fakeChatService) ClearHistory(ctx context.Context, sessionID string) (*dto.ClearHistoryResponse, error) {
	f.cleared = sessionID
	return &dto.ClearHistoryResponse{SessionID: sessionID, Cleared: true}, nil
}

type fakeCatalogService struct {
	reindexed *dto.ReindexRequest
}

func (f *fakeCatalogService) Search(ctx context.Context, req *dto.ProductSearchRequest) ([]dto.ProductSearchResult, error) {
	return []dto.ProductSearchResult{{Name: "Laptop Pro", Content: req.Query}}, nil
}

func (f *fakeCatalogService) RequestReindex(ctx context.Context, req *dto.ReindexRequest) (*dto.ReindexResponse, error) {
	f.reindexed = req
	return &dto.ReindexResponse{Queued: true}, nil
}

func newTestApp(chat *fakeChatService, cat *fakeCatalogService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(chat).RegisterRoutes(api)
	NewCatalogController(cat, testSecret).RegisterRoutes(api)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func agentToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"agent_id": "agent-1",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestChatController_SendMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"ok", `{"sessionId":"s1","message":"hi"}`, nil, http.StatusOK},
		{"missing message", `{"sessionId":"s1"}`, nil, http.StatusBadRequest},
		{"missing session", `{"message":"hi"}`, nil, http.StatusBadRequest},
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"internal failure", `{"sessionId":"s1","message":"hi"}`, errors.New("llm down: secret detail"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeChatService{sendErr: tt.serviceErr}, &fakeCatalogService{})

			status, body := doJSON(t, app, http.MethodPost, "/api/chat", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status)

			switch tt.wantStatus {
			case http.StatusOK:
				assert.Equal(t, "hi", body["message"].(map[string]interface{})["content"])
				assert.Equal(t, "hello there", body["response"].(map[string]interface{})["content"])
			case http.StatusInternalServerError:
				assert.Equal(t, "Internal server error", body["error"])
			default:
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestChatController_Handoff(t *testing.T) {
	app := newTestApp(&fakeChatService{}, &fakeCatalogService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/chat/handoff", `{"sessionId":"s1"}`, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "handoff_initiated", body["status"])
	assert.Equal(t, "5-10 minutes", body["estimatedWaitTime"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/chat/handoff", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChatController_HistoryRoutes(t *testing.T) {
	chat := &fakeChatService{}
	app := newTestApp(chat, &fakeCatalogService{})

	status, body := doJSON(t, app, http.MethodGet, "/api/chat/s42", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "s42", body["sessionId"])
	assert.Equal(t, "s42", chat.historyOf)

	status, body = doJSON(t, app, http.MethodDelete, "/api/chat/s42/history", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["cleared"])
	assert.Equal(t, "s42", chat.cleared)
}

func TestCatalogController_RequiresToken(t *testing.T) {
	app := newTestApp(&fakeChatService{}, &fakeCatalogService{})

	status, _ := doJSON(t, app, http.MethodGet, "/api/catalog/v1/search?q=laptop", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/catalog/v1/search?q=laptop", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogController_Search(t *testing.T) {
	app := newTestApp(&fakeChatService{}, &fakeCatalogService{})

	status, body := doJSON(t, app, http.MethodGet, "/api/catalog/v1/search?q=laptop&limit=2", "",
		map[string]string{"Authorization": "Bearer " + agentToken(t)})
	require.Equal(t, http.StatusOK, status)

	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "laptop", data[0].(map[string]interface{})["content"])
}

func TestCatalogController_Reindex(t *testing.T) {
	cat := &fakeCatalogService{}
	app := newTestApp(&fakeChatService{}, cat)

	status, _ := doJSON(t, app, http.MethodPost, "/api/catalog/v1/reindex", "",
		map[string]string{"Authorization": "Bearer " + agentToken(t)})
	assert.Equal(t, http.StatusAccepted, status)
	require.NotNil(t, cat.reindexed)
	assert.Nil(t, cat.reindexed.ProductID)
}
