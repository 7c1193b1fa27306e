package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNotConfigured is returned when no webhook URL is set
	ErrNotConfigured = errors.New("notify: discord webhook not configured")

	// ErrUnavailable is returned while the circuit breaker is open
	ErrUnavailable = errors.New("notify: discord temporarily unavailable")

	// ErrDeliveryFailed is returned when Discord rejects a message
	ErrDeliveryFailed = errors.New("notify: discord delivery failed")
)

// Embed colours
const (
	ColorInfo    = 0x3498DB
	ColorSuccess = 0x2ECC71
	ColorWarning = 0xF1C40F
)

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 512

// Field is a name/value pair rendered in an embed
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Message is one notification
type Message struct {
	Title       string
	Description string
	URL         string
	Color       int
	Fields      []Field
	Footer      string
	Timestamp   time.Time
}

// DiscordConfig holds webhook delivery settings
type DiscordConfig struct {
	WebhookURL      string
	Username        string
	Timeout         time.Duration
	RatePerMinute   int
	Burst           int
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultDiscordConfig returns the default webhook delivery settings
func DefaultDiscordConfig() DiscordConfig {
	return DiscordConfig{
		Username:        "Shopping Cart",
		Timeout:         10 * time.Second,
		RatePerMinute:   30,
		Burst:           5,
		BreakerFailures: 5,
		BreakerCooldown: time.Minute,
	}
}

// Validate checks the configuration
func (c DiscordConfig) Validate() error {
	if c.WebhookURL == "" {
		return ErrNotConfigured
	}
	u, err := url.Parse(c.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notify: invalid webhook url %q", c.WebhookURL)
	}
	if c.RatePerMinute < 1 {
		return fmt.Errorf("notify: rate_per_minute must be positive")
	}
	return nil
}

// DiscordNotifier posts messages to a Discord webhook, paced by a token
// bucket and guarded by a circuit breaker.
type DiscordNotifier struct {
	config     DiscordConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewDiscordNotifier creates a new Discord notifier
func NewDiscordNotifier(config DiscordConfig, logger *zap.Logger) (*DiscordNotifier, error) {
	defaults := DefaultDiscordConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RatePerMinute == 0 {
		config.RatePerMinute = defaults.RatePerMinute
	}
	if config.Burst < 1 {
		config.Burst = defaults.Burst
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = defaults.BreakerFailures
	}
	if config.BreakerCooldown <= 0 {
		config.BreakerCooldown = defaults.BreakerCooldown
	}
	if config.Username == "" {
		config.Username = defaults.Username
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &DiscordNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RatePerMinute)), config.Burst),
		logger:     logger,
	}
	n.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "discord-webhook",
		MaxRequests: 1,
		Timeout:     config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return n, nil
}

// State returns the circuit breaker state
func (n *DiscordNotifier) State() gobreaker.State {
	return n.breaker.State()
}

// Send delivers msg to the webhook
func (n *DiscordNotifier) Send(ctx context.Context, msg Message) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notify: waiting for rate limiter: %w", err)
	}

	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.post(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

type webhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []Field        `json:"fields,omitempty"`
	Footer      *webhookFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type webhookFooter struct {
	Text string `json:"text"`
}

func (n *DiscordNotifier) post(ctx context.Context, msg Message) error {
	embed := webhookEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		URL:         msg.URL,
		Color:       msg.Color,
		Fields:      msg.Fields,
	}
	if msg.Footer != "" {
		embed.Footer = &webhookFooter{Text: msg.Footer}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(webhookPayload{Username: n.config.Username, Embeds: []webhookEmbed{embed}})
	if err != nil {
		return fmt.Errorf("notify: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64)
		n.logger.Warn("discord rate limited the webhook",
			zap.Float64("retry_after_seconds", retryAfter),
		)
	}
	return fmt.Errorf("%w: HTTP %d: %s", ErrDeliveryFailed, resp.StatusCode, bytes.TrimSpace(respBody))
}
