package events

import (
	"context"
	"testing"
)

func TestNew_DisabledRunsLogOnly(t *testing.T) {
	p := New(Config{Enabled: false, SessionTopic: "interview.sessions", AnswerTopic: "interview.answers"})

	if p == nil {
		t.Fatal("expected a publisher in log-only mode")
	}
	if err := p.PublishSession(context.Background(), EventSessionCreated, "session-1", map[string]interface{}{"questions": 6}); err != nil {
		t.Errorf("log-only publish failed: %v", err)
	}
	if err := p.PublishAnswer(context.Background(), "session-1", map[string]interface{}{"score": 7.5}); err != nil {
		t.Errorf("log-only answer publish failed: %v", err)
	}
}

func TestNew_EnabledWithoutBrokersRunsLogOnly(t *testing.T) {
	p := New(Config{Enabled: true, SessionTopic: "interview.sessions", AnswerTopic: "interview.answers"})

	// No brokers configured, so nothing should try the network.
	if err := p.PublishSession(context.Background(), EventReportCompleted, "session-2", nil); err != nil {
		t.Errorf("expected log-only fallback without brokers, got %v", err)
	}
}

func TestPublish_UnmarshalableFields(t *testing.T) {
	p := New(Config{Enabled: false})

	fields := map[string]interface{}{"bad": make(chan int)}
	if err := p.PublishSession(context.Background(), EventAnswerAnalyzed, "session-3", fields); err == nil {
		t.Error("expected marshal error for unencodable field")
	}
}

func TestClose_DisabledPublisher(t *testing.T) {
	p := New(Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("Close on log-only publisher failed: %v", err)
	}
}

func TestClose_EnabledPublisher(t *testing.T) {
	p := New(Config{
		Enabled:      true,
		Brokers:      []string{"localhost:9092"},
		SessionTopic: "interview.sessions",
		AnswerTopic:  "interview.answers",
	})

	// Writers are lazy, closing without publishing must not dial.
	if err := p.Close(); err != nil {
		t.Errorf("Close on unused publisher failed: %v", err)
	}
}
