//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Cortex/internal/config"
	"golang.org/x/net/websocket"
)

type integrationEnv struct {
	BaseURL string `env:"CORTEX_TEST_BASE_URL" envDefault:"http://127.0.0.1:18080"`
}

func baseURL(t *testing.T) string {
	t.Helper()
	var cfg integrationEnv
	if err := config.ParseEnv(&cfg); err != nil {
		t.Fatalf("load integration env: %v", err)
	}
	return strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
}

func TestUserJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL(t)

	var user struct {
		ID int64 `json:"id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/users", map[string]any{
		"username": fmt.Sprintf("integration_%d", time.Now().UnixNano()),
		"password": "Secret123!",
	}, &user)
	if user.ID <= 0 {
		t.Fatalf("expected user id in response")
	}

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	ws, err := websocket.Dial(wsURL, "", base)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer ws.Close()
	if err := websocket.JSON.Send(ws, map[string]any{"type": "register", "userId": user.ID}); err != nil {
		t.Fatalf("send register: %v", err)
	}
	var ack struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
	}
	_ = ws.SetDeadline(time.Now().Add(5 * time.Second))
	if err := websocket.JSON.Receive(ws, &ack); err != nil || ack.Type != "registered" || !ack.Success {
		t.Fatalf("register ack = %+v, err=%v", ack, err)
	}

	var tr struct {
		ID int64 `json:"id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/test-responses", map[string]any{
		"userId":     user.ID,
		"testCode":   "BUCP-DT",
		"questionId": "q1",
		"response":   "agree",
	}, &tr)
	if tr.ID <= 0 {
		t.Fatalf("expected test response id")
	}

	seen := map[string]bool{}
	for len(seen) < 2 {
		var frame struct {
			Type string `json:"type"`
			Data struct {
				BrainRegionID  string `json:"brainRegionId"`
				TestResponseID int64  `json:"testResponseId"`
			} `json:"data"`
		}
		if err := websocket.JSON.Receive(ws, &frame); err != nil {
			t.Fatalf("receive neurofeedback frame: %v", err)
		}
		if frame.Type != "neurofeedback" || frame.Data.TestResponseID != tr.ID {
			t.Fatalf("unexpected frame %+v", frame)
		}
		seen[frame.Data.BrainRegionID] = true
	}
	if !seen["PFC"] || !seen["ACC"] {
		t.Fatalf("regions pushed = %v, want PFC and ACC", seen)
	}

	var recent []struct {
		ID int64 `json:"id"`
	}
	doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/users/%d/neurofeedback?limit=10", base, user.ID), nil, &recent)
	if len(recent) != 2 {
		t.Fatalf("recent events = %d, want 2", len(recent))
	}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
