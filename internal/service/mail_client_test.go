package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMailClientSend(t *testing.T) {
	var captured sendEmailRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer server.Close()

	client := newMailClient("test-key", "测试 <noreply@example.com>")
	client.SetBaseURL(server.URL)

	id, err := client.Send(context.Background(), "user@example.com", "主题", "<p>正文</p>")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if id != "email-123" {
		t.Fatalf("unexpected message id: %s", id)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if captured.From != "测试 <noreply@example.com>" {
		t.Fatalf("unexpected from: %s", captured.From)
	}
	if len(captured.To) != 1 || captured.To[0] != "user@example.com" {
		t.Fatalf("unexpected to: %v", captured.To)
	}
}

func TestMailClientSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer server.Close()

	client := newMailClient("test-key", "")
	client.SetBaseURL(server.URL)

	_, err := client.Send(context.Background(), "bad", "主题", "<p>正文</p>")
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("expected API message in error, got %v", err)
	}
}

func TestMailClientMissingAPIKey(t *testing.T) {
	client := newMailClient("  ", "")
	if _, err := client.Send(context.Background(), "user@example.com", "主题", "<p>正文</p>"); !errors.Is(err, ErrMailAPIKeyMissing) {
		t.Fatalf("expected ErrMailAPIKeyMissing, got %v", err)
	}
}

func TestMailClientDefaultFrom(t *testing.T) {
	client := newMailClient("key", "   ")
	if !strings.Contains(client.from, "onboarding@resend.dev") {
		t.Fatalf("expected default sender, got %s", client.from)
	}
}
