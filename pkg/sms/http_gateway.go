package sms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// HTTPGateway sends SMS through a token-authenticated JSON gateway:
// POST /login {username, password} -> {token, expiration}, then
// POST /sms {recipients, message, sender} with a bearer token.
type HTTPGateway struct {
	client   *resty.Client
	username string
	password string
	sender   string
	logger   *logrus.Logger

	token       string
	tokenMutex  sync.RWMutex
	tokenExpiry time.Time
	now         func() time.Time
}

// HTTPConfig holds configuration for the HTTP gateway
type HTTPConfig struct {
	APIURL   string
	Username string
	Password string
	Sender   string
	Timeout  time.Duration
}

// NewHTTPGateway creates a new HTTP SMS gateway client
func NewHTTPGateway(config HTTPConfig, logger *logrus.Logger) *HTTPGateway {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(config.APIURL).
		SetTimeout(config.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPGateway{
		client:   client,
		username: config.Username,
		password: config.Password,
		sender:   config.Sender,
		logger:   logger,
		now:      time.Now,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status     string `json:"status"`
	Comment    string `json:"comment"`
	Token      string `json:"token"`
	Expiration int    `json:"expiration"` // seconds
}

type sendRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	Sender     string   `json:"sender,omitempty"`
	Reference  int64    `json:"reference"`
}

type sendResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Data    struct {
		Accepted int `json:"accepted"`
		Rejected int `json:"rejected"`
	} `json:"data"`
}

// Name returns the gateway name
func (g *HTTPGateway) Name() string {
	return "http"
}

// login fetches a fresh bearer token
func (g *HTTPGateway) login(ctx context.Context) error {
	var result loginResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(loginRequest{Username: g.username, Password: g.password}).
		SetResult(&result).
		Post("/login")
	if err != nil {
		return fmt.Errorf("failed to send login request: %w", err)
	}
	if resp.IsError() || result.Status != "success" || result.Token == "" {
		return fmt.Errorf("login failed: %s (http %d)", result.Comment, resp.StatusCode())
	}

	g.tokenMutex.Lock()
	g.token = result.Token
	g.tokenExpiry = g.now().Add(time.Duration(result.Expiration) * time.Second)
	g.tokenMutex.Unlock()
	return nil
}

// currentToken returns a token valid for at least another minute, logging in if needed
func (g *HTTPGateway) currentToken(ctx context.Context) (string, error) {
	g.tokenMutex.RLock()
	token, expiry := g.token, g.tokenExpiry
	g.tokenMutex.RUnlock()

	if token != "" && g.now().Before(expiry.Add(-time.Minute)) {
		return token, nil
	}
	if err := g.login(ctx); err != nil {
		return "", err
	}

	g.tokenMutex.RLock()
	defer g.tokenMutex.RUnlock()
	return g.token, nil
}

// Send delivers message to every valid phone in one gateway call
func (g *HTTPGateway) Send(ctx context.Context, phones []string, message string) error {
	recipients, err := normalizeRecipients(phones)
	if err != nil {
		return err
	}

	token, err := g.currentToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	var result sendResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(sendRequest{
			Recipients: recipients,
			Message:    message,
			Sender:     g.sender,
			Reference:  g.now().UnixMicro(),
		}).
		SetResult(&result).
		Post("/sms")
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	if resp.StatusCode() == 401 {
		// Token revoked server-side; force a fresh login next time.
		g.tokenMutex.Lock()
		g.token = ""
		g.tokenMutex.Unlock()
	}
	if resp.IsError() || result.Status != "success" {
		return fmt.Errorf("SMS sending failed: %s (http %d)", result.Comment, resp.StatusCode())
	}

	g.logger.WithFields(logrus.Fields{
		"accepted": result.Data.Accepted,
		"rejected": result.Data.Rejected,
	}).Info("SMS alert sent")
	return nil
}
