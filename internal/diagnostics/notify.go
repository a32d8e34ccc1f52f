package diagnostics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Notifier delivers a security violation to an external sink. Delivery is
// best-effort: a notification failure never blocks the failure path that
// triggered it.
type Notifier interface {
	Notify(v Violation) error
}

// NewNotifier builds a notifier from a target string. https:// and http://
// targets get a webhook notifier, nats:// targets a NATS publisher. An
// empty target returns nil (notifications disabled).
func NewNotifier(target string) (Notifier, error) {
	switch {
	case target == "":
		return nil, nil
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return &WebhookNotifier{URL: target, Client: &http.Client{Timeout: 5 * time.Second}}, nil
	case strings.HasPrefix(target, "nats://"):
		// Return a nil interface on failure: a typed nil *NATSNotifier
		// would pass the caller's nil check and panic on first use.
		n, err := NewNATSNotifier(target)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported notification target %q", target)
	}
}

// WebhookNotifier POSTs the violation as JSON to a webhook endpoint.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func (n *WebhookNotifier) Notify(v Violation) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}
	resp, err := n.Client.Post(n.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post violation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// violationSubject is the NATS subject security violations publish to.
const violationSubject = "agenthook.violations"

// NATSNotifier publishes violations to a NATS subject.
type NATSNotifier struct {
	conn *nats.Conn
}

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSNotifier{conn: conn}, nil
}

func (n *NATSNotifier) Notify(v Violation) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}
	if err := n.conn.Publish(violationSubject, payload); err != nil {
		return fmt.Errorf("publish violation: %w", err)
	}
	return n.conn.Flush()
}

// Close drains the NATS connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
