// Package gmailclient delivers rendered emails through the Gmail API.
package gmailclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultInterval is the minimum gap between two sends.
const DefaultInterval = 3 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithFrom sets the From header. Gmail uses the authenticated account when
// empty.
func WithFrom(from string) Option {
	return func(c *Client) {
		c.from = from
	}
}

// WithInterval sets the throttle interval. Zero disables throttling.
func WithInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval >= 0 {
			c.interval = interval
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps the Gmail API service.
type Client struct {
	service  *gmail.Service
	from     string
	interval time.Duration
	logger   *zap.Logger

	sendMutex    sync.Mutex
	lastSendTime time.Time
}

// New wraps an existing Gmail service.
func New(service *gmail.Service, options ...Option) (*Client, error) {
	if service == nil {
		return nil, errors.New("gmailclient: service is required")
	}
	c := &Client{
		service:  service,
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// NewFromFiles builds a client from an OAuth client credentials file and a
// previously authorised token file.
func NewFromFiles(ctx context.Context, credentialsFile, tokenFile string, options ...Option) (*Client, error) {
	credentials, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("gmailclient: read credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(credentials, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("gmailclient: parse credentials: %w", err)
	}
	token, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("gmailclient: create gmail service: %w", err)
	}
	return New(service, options...)
}

// LoadToken reads an OAuth token saved as JSON.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gmailclient: open token: %w", err)
	}
	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("gmailclient: decode token: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, errors.New("gmailclient: token file has no access or refresh token")
	}
	return &token, nil
}

// wait blocks until the throttle interval has passed since the last send.
// Callers hold sendMutex.
func (c *Client) wait(ctx context.Context) error {
	if c.lastSendTime.IsZero() || c.interval <= 0 {
		return nil
	}
	elapsed := time.Since(c.lastSendTime)
	if elapsed >= c.interval {
		return nil
	}

	timer := time.NewTimer(c.interval - elapsed)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
