package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/localserve/localserve-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject)

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	AccountRegistered    = "account.registered"
	AccountEmailVerified = "account.email_verified"
	AccountPhoneVerified = "account.phone_verified"
	AccountPasswordReset = "account.password_reset"
	AccountDeleted       = "account.deleted"

	CatalogServiceCreated = "catalog.service.created"
	CatalogServiceUpdated = "catalog.service.updated"
	CatalogServiceDeleted = "catalog.service.deleted"

	NotifySMS = "notify.sms"
)

// Event payloads
type AccountRegisteredEvent struct {
	AccountID    int64     `json:"account_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

type AccountVerifiedEvent struct {
	AccountID  int64     `json:"account_id"`
	Channel    string    `json:"channel"` // email or phone
	VerifiedAt time.Time `json:"verified_at"`
}

type AccountPasswordResetEvent struct {
	AccountID int64     `json:"account_id"`
	ResetAt   time.Time `json:"reset_at"`
}

type AccountDeletedEvent struct {
	AccountID int64     `json:"account_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type CatalogServiceEvent struct {
	ServiceID int64     `json:"service_id"`
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
}

type SMSNotification struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}
