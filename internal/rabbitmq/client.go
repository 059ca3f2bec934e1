package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ.
// Реализует ports.UserEventPublisher и ports.UserEventConsumer.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// объявление очереди идемпотентно
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("rabbitmq connected", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("failed to close rabbitmq channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	c.logger.Info("rabbitmq connection closed")
	return nil
}

// PublishUserEvent публикует событие пользователя в очередь
func (c *Client) PublishUserEvent(ctx context.Context, event payloads.UserEventPayload) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID.String(),
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}

	c.logger.Debug("user event published", "queue", c.queue.Name, "event_id", event.EventID, "type", event.Type)
	return nil
}

// ErrDeliveriesClosed брокер закрыл канал доставки (разрыв соединения, удаление очереди)
var ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

// StartConsumingUserEvents регистрирует потребителя и обрабатывает сообщения
// в отдельной горутине до отмены ctx или закрытия канала брокером.
func (c *Client) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) (<-chan error, error) {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack, подтверждаем вручную
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		if err := consumeDeliveries(ctx, msgs, handler, c.logger); err != nil {
			done <- err
		}
	}()

	return done, nil
}

// consumeDeliveries обрабатывает сообщения до отмены ctx (nil)
// или закрытия канала доставки (ErrDeliveriesClosed)
func consumeDeliveries(ctx context.Context, msgs <-chan amqp.Delivery, handler func(context.Context, payloads.UserEventPayload) error, logger *slog.Logger) error {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				logger.Error("rabbitmq delivery channel closed, stopping consumer")
				return ErrDeliveriesClosed
			}
			handleDelivery(ctx, msg, handler, logger)
		case <-ctx.Done():
			logger.Info("context cancelled, stopping rabbitmq consumer")
			return nil
		}
	}
}

// handleDelivery разбирает одно сообщение и подтверждает его.
// Битые и некорректные события отбрасываются без возврата в очередь,
// ошибка обработчика возвращает сообщение в очередь.
func handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.UserEventPayload) error, logger *slog.Logger) {
	var event payloads.UserEventPayload
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Error("failed to unmarshal user event", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}
	if err := event.Valid(); err != nil {
		logger.Error("dropping invalid user event", "error", err)
		if err := msg.Nack(false, false); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		logger.Error("failed to process user event", "event_id", event.EventID, "error", err)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("failed to ack message", "event_id", event.EventID, "error", err)
		return
	}
	logger.Info("user event processed", "event_id", event.EventID, "type", event.Type)
}
