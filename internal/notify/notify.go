package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nestvault/nestvault/internal/config"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Event is the payload sent after a backup cycle finishes, one way or the
// other.
type Event struct {
	Database string `json:"database"`
	Status   string `json:"status"`
	Key      string `json:"key,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type route struct {
	onSuccess bool
	onFailure bool
	notifier  Notifier
}

// Dispatcher fans an event out to every configured channel whose filter
// matches the event status. A nil or empty dispatcher is a no-op.
type Dispatcher struct {
	routes []route
}

// NewDispatcher builds channels from the optional notification settings.
// With neither a webhook URL nor an SMTP host configured the dispatcher is
// empty and every Notify is a no-op.
func NewDispatcher(cfg config.NotifyConfig) (*Dispatcher, error) {
	onSuccess, onFailure, err := parseOn(cfg.On)
	if err != nil {
		return nil, err
	}

	var routes []route
	if cfg.WebhookURL != "" {
		nf, err := NewWebhook(cfg.WebhookURL, cfg.Headers)
		if err != nil {
			return nil, fmt.Errorf("webhook notifier: %w", err)
		}
		routes = append(routes, route{onSuccess: onSuccess, onFailure: onFailure, notifier: nf})
	}
	if cfg.SMTPHost != "" {
		nf, err := NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.To, cfg.Username, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("email notifier: %w", err)
		}
		routes = append(routes, route{onSuccess: onSuccess, onFailure: onFailure, notifier: nf})
	}

	return &Dispatcher{routes: routes}, nil
}

func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	if d == nil || len(d.routes) == 0 {
		return nil
	}

	var errs []error
	for i, r := range d.routes {
		if !r.wants(event.Status) {
			continue
		}
		if err := r.notifier.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notification route %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (r route) wants(status string) bool {
	switch status {
	case StatusSuccess:
		return r.onSuccess
	case StatusFailure:
		return r.onFailure
	default:
		return false
	}
}

func parseOn(raw []string) (bool, bool, error) {
	if len(raw) == 0 {
		return false, true, nil
	}

	var onSuccess, onFailure bool
	for _, v := range raw {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "success":
			onSuccess = true
		case "failure":
			onFailure = true
		case "both":
			onSuccess = true
			onFailure = true
		default:
			return false, false, fmt.Errorf("NOTIFY_ON contains unsupported value %q", v)
		}
	}
	return onSuccess, onFailure, nil
}
