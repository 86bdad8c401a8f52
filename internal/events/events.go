// Package events publishes ledger events to an AMQP broker.
//
// The feed is best-effort: publishing failures are logged and dropped,
// they never affect the result of the ledger operation that triggered
// them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/backend/internal/models"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	exchangeName = "moneta.ledger"
	routingKey   = "ledger"
)

// Event describes one ledger operation.
type Event struct {
	Action        string                 `json:"action"` // "recorded" or "voided"
	TransactionID uuid.UUID              `json:"transactionId"`
	Type          models.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Timestamp     time.Time              `json:"timestamp"`
}

// Recorded returns the event for a newly recorded transaction.
func Recorded(transaction models.Transaction) Event {
	return newEvent("recorded", transaction)
}

// Voided returns the event for a voided transaction.
func Voided(transaction models.Transaction) Event {
	return newEvent("voided", transaction)
}

func newEvent(action string, transaction models.Transaction) Event {
	return Event{
		Action:        action,
		TransactionID: transaction.ID,
		Type:          transaction.Type,
		Amount:        transaction.Amount,
		Timestamp:     time.Now().In(time.UTC),
	}
}

// Publisher sends events to an AMQP exchange.
type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewPublisher connects to the broker and declares the exchange.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: channel}, nil
}

// Publish sends the event. Failures are logged, not returned, the feed
// never interferes with ledger correctness.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshaling ledger event failed")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		exchangeName,
		fmt.Sprintf("%s.%s", routingKey, event.Action),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("publishing ledger event failed")
		return
	}

	log.Debug().Str("action", event.Action).Str("transaction-id", event.TransactionID.String()).Msg("published ledger event")
}

// Close shuts down the channel and the connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}

	if p.channel != nil {
		p.channel.Close()
	}

	if p.conn != nil {
		p.conn.Close()
	}
}
