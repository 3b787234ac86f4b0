package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"customer-service-be/internal/dto"

	"github.com/fatih/color"
)

var (
	userColor      = color.New(color.FgBlue, color.Bold)
	assistantColor = color.New(color.FgGreen)
	systemColor    = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed, color.Bold)
	timestampColor = color.New(color.FgHiBlack)
)

// story walks a customer from product discovery to asking for a human.
var story = []string{
	"Hi, I'm interested in buying a new laptop. Can you help me?",
	"Which laptops do you have in stock?",
	"How much is the MacBook Pro?",
	"I'd like to order the MacBook Pro. How do I proceed?",
}

type client struct {
	baseURL string
	http    *http.Client
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:3000/api", "API base URL")
	pause := flag.Duration("pause", 2*time.Second, "delay between turns")
	flag.Parse()

	c := &client{baseURL: strings.TrimRight(*baseURL, "/"), http: &http.Client{Timeout: 90 * time.Second}}
	sessionID := fmt.Sprintf("test-session-%d", time.Now().UnixMilli())

	fmt.Println("\n🚀 Starting chat flow simulation")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Session: %s\n", sessionID)

	if err := run(c, sessionID, *pause); err != nil {
		logMessage(errorColor, "error", err.Error())
		os.Exit(1)
	}

	fmt.Println("\n✅ Simulation completed")
}

func run(c *client, sessionID string, pause time.Duration) error {
	for i, text := range story {
		logMessage(userColor, "user", text)

		var res dto.SendMessageResponse
		if err := c.do(http.MethodPost, "/chat", dto.SendMessageRequest{SessionID: sessionID, Message: text}, &res); err != nil {
			return err
		}
		if res.Response.Content == "" {
			return fmt.Errorf("turn %d: empty assistant reply", i+1)
		}
		logMessage(assistantColor, "assistant", res.Response.Content)
		time.Sleep(pause)
	}

	logMessage(userColor, "user", "I'd rather talk to a person, please.")
	var handoff dto.HandoffResponse
	if err := c.do(http.MethodPost, "/chat/handoff", dto.HandoffRequest{SessionID: sessionID, Reason: "Customer asked for a human agent"}, &handoff); err != nil {
		return err
	}
	logMessage(systemColor, "system", fmt.Sprintf("%s (%s, wait %s)", handoff.Message, handoff.Status, handoff.EstimatedWaitTime))

	var hist dto.ChatHistoryResponse
	if err := c.do(http.MethodGet, "/chat/"+sessionID, nil, &hist); err != nil {
		return err
	}

	fmt.Printf("\n📜 Transcript (%d records)\n", len(hist.Messages))
	for _, m := range hist.Messages {
		fmt.Printf("  %s %-9s %s\n", timestampColor.Sprint(m.Timestamp.Format(time.RFC3339)), m.Role, truncate(m.Content, 70))
	}

	want := 2*len(story) + 1
	if len(hist.Messages) != want {
		return fmt.Errorf("expected %d transcript records, got %d", want, len(hist.Messages))
	}
	return nil
}

func (c *client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

func logMessage(c *color.Color, role, content string) {
	fmt.Printf("\n%s %s\n", timestampColor.Sprintf("[%s]", time.Now().Format(time.RFC3339)), c.Sprint(strings.ToUpper(role)+":"))
	c.Println(content)
	timestampColor.Println(strings.Repeat("-", 80))
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
