// Copyright 2025 James Ross
package adapter

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPAdapter publishes to a topic exchange, mirroring the original
// library's AmqpAdapter: exchange "events", routing key "emit.events",
// content type application/json, non-persistent delivery mode, with
// publisher confirms enabled so Emit only reports success once the broker
// has acked the message.
type AMQPAdapter struct {
	URL         string
	Exchange    string
	RoutingKey  string
	ConfirmWait time.Duration

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

func NewAMQP(url string) *AMQPAdapter {
	return &AMQPAdapter{URL: url, Exchange: "events", RoutingKey: "emit.events", ConfirmWait: 5 * time.Second, closed: true}
}

func (a *AMQPAdapter) New() Adapter {
	return &AMQPAdapter{URL: a.URL, Exchange: a.Exchange, RoutingKey: a.RoutingKey, ConfirmWait: a.ConfirmWait, closed: true}
}

func (a *AMQPAdapter) Name() string { return "amqp:" + a.RoutingKey }

func (a *AMQPAdapter) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	conn, err := amqp.Dial(a.URL)
	if err != nil {
		return &ClosedErr{Cause: err}
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return &ClosedErr{Cause: err}
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return &ClosedErr{Cause: err}
	}
	if err := ch.ExchangeDeclare(a.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return &ClosedErr{Cause: err}
	}
	a.conn, a.ch = conn, ch
	a.closed = false
	return nil
}

func (a *AMQPAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if a.ch != nil {
		a.ch.Close()
		a.ch = nil
	}
	if a.conn != nil {
		err := a.conn.Close()
		a.conn = nil
		return err
	}
	return nil
}

func (a *AMQPAdapter) Flush() error {
	if a.Closed() {
		return &ClosedErr{}
	}
	return nil
}

func (a *AMQPAdapter) Emit(payload []byte) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return &ClosedErr{}
	}
	ch := a.ch
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.ConfirmWait)
	defer cancel()
	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, a.Exchange, a.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Body:         payload,
	})
	if err != nil {
		return &EmitErr{Cause: err}
	}
	if confirm == nil {
		return nil
	}
	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return &EmitErr{Cause: err}
	}
	if !ok {
		return &EmitErr{Cause: context.DeadlineExceeded}
	}
	return nil
}

func (a *AMQPAdapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
