// Package events publishes interview lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-interviewer/internal/observability/metrics"
)

// Event types carried on the two topics.
const (
	EventSessionCreated     = "session.created"
	EventQuestionsGenerated = "questions.generated"
	EventSpeechStarted      = "speech.started"
	EventAnswerAnalyzed     = "answer.analyzed"
	EventReportCompleted    = "report.completed"
)

// Event is the wire shape for interview events. Keyed by session id so a
// session's events stay ordered within a partition.
type Event struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id"`
	At        time.Time              `json:"at"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Publisher writes session lifecycle events and answer events to separate
// topics. With no brokers configured it runs in log-only mode.
type Publisher struct {
	writerSession *kafka.Writer
	writerAnswer  *kafka.Writer
	topicSession  string
	topicAnswer   string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	SessionTopic string
	AnswerTopic  string
	Enabled      bool
}

// New creates the publisher. Disabled or broker-less configurations get a
// log-only publisher so call sites never need nil checks.
func New(cfg Config) *Publisher {
	m := metrics.DefaultMetrics

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			topicSession: cfg.SessionTopic,
			topicAnswer:  cfg.AnswerTopic,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSession", cfg.SessionTopic).
		Str("topicAnswer", cfg.AnswerTopic).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerSession: newWriter(cfg.SessionTopic),
		writerAnswer:  newWriter(cfg.AnswerTopic),
		topicSession:  cfg.SessionTopic,
		topicAnswer:   cfg.AnswerTopic,
		enabled:       true,
		metrics:       m,
	}
}

// PublishSession publishes a session lifecycle event.
func (p *Publisher) PublishSession(ctx context.Context, eventType, sessionID string, fields map[string]interface{}) error {
	return p.publish(ctx, p.writerSession, p.topicSession, eventType, sessionID, fields)
}

// PublishAnswer publishes an answer analysis event.
func (p *Publisher) PublishAnswer(ctx context.Context, sessionID string, fields map[string]interface{}) error {
	return p.publish(ctx, p.writerAnswer, p.topicAnswer, EventAnswerAnalyzed, sessionID, fields)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, sessionID string, fields map[string]interface{}) error {
	start := time.Now()

	event := Event{
		Type:      eventType,
		SessionID: sessionID,
		At:        time.Now().UTC(),
		Fields:    fields,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("topic", topic).
		Str("type", eventType).
		Str("sessionId", sessionID).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("type", eventType).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSession != nil {
		if e := p.writerSession.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing session writer")
			err = e
		}
	}
	if p.writerAnswer != nil {
		if e := p.writerAnswer.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing answer writer")
			err = e
		}
	}
	return err
}
