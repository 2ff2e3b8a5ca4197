package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/openlob/openlob/pkg/messaging"
)

var (
	brokerList = "localhost:9092"
	topic      = "order-executions"
)

// Constructor seams, replaced by mocks in tests.
var (
	newSyncProducer = sarama.NewSyncProducer
	newConsumer     = sarama.NewConsumer
)

// Configure overrides the broker address and topic. Call before the
// first sender or consumer is created.
func Configure(broker, t string) {
	if broker != "" {
		brokerList = broker
	}
	if t != "" {
		topic = t
	}
}

// QueueMessageSender implements the MessageSender interface on top of a
// sarama sync producer.
type QueueMessageSender struct {
	producer sarama.SyncProducer
}

// NewQueueMessageSender creates a sender with its own producer connection
func NewQueueMessageSender() (*QueueMessageSender, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 5

	producer, err := newSyncProducer([]string{brokerList}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer}, nil
}

// SendExecutionMessage publishes one execution result, keyed by order ID
func (q *QueueMessageSender) SendExecutionMessage(_ context.Context, msg *messaging.ExecutionMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal execution message: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(msg.OrderID, 10)),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := q.producer.SendMessage(producerMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueMessageSender implements MessageSender
var _ messaging.MessageSender = (*QueueMessageSender)(nil)

// QueueMessageConsumer reads execution messages back off the topic
type QueueMessageConsumer struct {
	consumer sarama.Consumer
	done     chan struct{}
}

// NewQueueMessageConsumer creates a consumer connected to the broker
func NewQueueMessageConsumer() (*QueueMessageConsumer, error) {
	consumer, err := newConsumer([]string{brokerList}, sarama.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &QueueMessageConsumer{
		consumer: consumer,
		done:     make(chan struct{}),
	}, nil
}

// ConsumeExecutionMessages reads messages until Close is called,
// invoking handler for each decoded message. Decode and handler errors
// are skipped, not fatal: the stream keeps going.
func (c *QueueMessageConsumer) ConsumeExecutionMessages(handler func(*messaging.ExecutionMessage) error) error {
	partitionConsumer, err := c.consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to consume partition: %w", err)
	}
	defer partitionConsumer.Close()

	for {
		select {
		case msg, ok := <-partitionConsumer.Messages():
			if !ok {
				return nil
			}
			var execMsg messaging.ExecutionMessage
			if err := json.Unmarshal(msg.Value, &execMsg); err != nil {
				continue
			}
			if err := handler(&execMsg); err != nil {
				continue
			}
		case <-partitionConsumer.Errors():
			continue
		case <-c.done:
			return nil
		}
	}
}

// Close stops consumption and closes the connection
func (c *QueueMessageConsumer) Close() error {
	close(c.done)
	return c.consumer.Close()
}
