package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMailAPIKeyMissing 表示未配置邮件服务的 API Key，发送前直接拒绝
var ErrMailAPIKeyMissing = errors.New("mail api key is required")

// Mailer 定义外发邮件能力，便于在派发器与测试中注入不同实现
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendEmailResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// mailClient 通过 Resend 风格的 HTTP API 发送事务邮件
type mailClient struct {
	http    httpDoer
	baseURL string
	apiKey  string
	from    string
}

// NewMailClient 构造默认的邮件客户端；baseURL 为空时使用 Resend 官方地址
func NewMailClient(apiKey, from, baseURL string) Mailer {
	client := newMailClient(apiKey, from)
	if strings.TrimSpace(baseURL) != "" {
		client.SetBaseURL(baseURL)
	}
	return client
}

func newMailClient(apiKey, from string) *mailClient {
	if strings.TrimSpace(from) == "" {
		from = "习惯追踪器 <onboarding@resend.dev>"
	}
	return &mailClient{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: "https://api.resend.com",
		apiKey:  strings.TrimSpace(apiKey),
		from:    from,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试
func (c *mailClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
		return
	}
	c.http = client
}

// SetBaseURL 覆盖默认的邮件 API 地址
func (c *mailClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// Send 发送一封 HTML 邮件，成功时返回服务端的 message id
func (c *mailClient) Send(ctx context.Context, to, subject, html string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMailAPIKeyMissing
	}

	payload := sendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/emails"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建邮件请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求邮件接口失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("读取邮件响应失败: %w", err)
	}

	var result sendEmailResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("解析邮件响应失败: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(result.Message)
		if errMsg == "" {
			errMsg = strings.TrimSpace(string(respBody))
		}
		if errMsg == "" {
			errMsg = resp.Status
		}
		return "", fmt.Errorf("邮件接口返回错误：%s", errMsg)
	}

	return result.ID, nil
}
