package workflows

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/photoproos/platform/models"
	"go.uber.org/zap"
)

// Notifier delivers email to clients
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// LogNotifier logs messages instead of sending them
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that writes each message to the log
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	n.logger.Info("email queued",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))
	return nil
}

// ErrBlockedDestination is returned for webhook targets on loopback, private,
// link-local or unspecified addresses
var ErrBlockedDestination = errors.New("webhook destination not allowed")

// WebhookPoster delivers event payloads to customer endpoints
type WebhookPoster struct {
	httpClient *resty.Client
	guard      bool
}

// NewWebhookPoster creates a poster with a short timeout and no retries.
// Connections to internal addresses are refused after DNS resolution.
func NewWebhookPoster(timeout time.Duration) *WebhookPoster {
	return newWebhookPoster(timeout, true)
}

func newWebhookPoster(timeout time.Duration, guard bool) *WebhookPoster {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "PhotoProOS-Workflows/1.0")
	if guard {
		dialer := &net.Dialer{Timeout: timeout, Control: guardDial}
		client.SetTransport(&http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: timeout,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		})
		client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(3))
	}
	return &WebhookPoster{httpClient: client, guard: guard}
}

// guardDial runs on every connection attempt with the resolved address
func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip == nil || blockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}
	return nil
}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast()
}

// checkWebhookURL rejects malformed targets and literal internal hosts
func checkWebhookURL(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return fmt.Errorf("invalid webhook url %q", target)
	}
	host := u.Hostname()
	if host == "localhost" {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}
	if ip := net.ParseIP(host); ip != nil && blockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}
	return nil
}

// Post sends the event as JSON and fails on any non-2xx response
func (p *WebhookPoster) Post(ctx context.Context, target string, event models.WorkflowEvent) error {
	if p.guard {
		if err := checkWebhookURL(target); err != nil {
			return err
		}
	} else if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid webhook url %q", target)
	}

	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetHeader("X-PhotoProOS-Event", string(event.Trigger)).
		SetBody(event).
		Post(target)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %d", resp.StatusCode())
	}
	return nil
}

// ValidateSteps checks that every step carries the config its action needs
func ValidateSteps(steps []models.WorkflowStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range steps {
		switch step.Action {
		case models.StepSendEmail:
			if step.Config["subject"] == "" {
				return fmt.Errorf("step %d: send_email requires config.subject", i+1)
			}
		case models.StepWebhook:
			if step.Config["url"] == "" {
				return fmt.Errorf("step %d: webhook requires config.url", i+1)
			}
			if err := checkWebhookURL(step.Config["url"]); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		case models.StepTagClient:
			if step.Config["tag"] == "" {
				return fmt.Errorf("step %d: tag_client requires config.tag", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}
