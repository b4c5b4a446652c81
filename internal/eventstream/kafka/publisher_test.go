package kafka_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"mnemo/internal/eventstream"
	"mnemo/internal/eventstream/kafka"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		w *recordingWriter
		p *kafka.Publisher
	)

	BeforeEach(func() {
		w = &recordingWriter{}
		p = kafka.NewPublisherWithWriter(w)
	})

	It("writes the event keyed by user id", func() {
		event := eventstream.NewTurnAppendedEvent("u1", "user", "hello", "2025-01-01T00:00:00.000000Z")
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())

		Expect(w.msgs).To(HaveLen(1))
		Expect(string(w.msgs[0].Key)).To(Equal("u1"))

		var decoded eventstream.TurnAppendedEvent
		Expect(json.Unmarshal(w.msgs[0].Value, &decoded)).To(Succeed())
		Expect(decoded.EventID).To(Equal(event.EventID))
		Expect(decoded.Message).To(Equal("hello"))
	})

	It("rejects nil events without writing", func() {
		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(w.msgs).To(BeEmpty())
	})

	It("wraps writer failures", func() {
		boom := errors.New("broker down")
		w.err = boom

		err := p.PublishTurn(context.Background(), eventstream.NewTurnAppendedEvent("u1", "user", "hi", ""))
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("write event to kafka"))
	})

	It("writes cleared events keyed by user id", func() {
		Expect(p.PublishCleared(context.Background(), eventstream.NewHistoryClearedEvent("u2", 3))).To(Succeed())

		Expect(w.msgs).To(HaveLen(1))
		Expect(string(w.msgs[0].Key)).To(Equal("u2"))

		var decoded eventstream.HistoryClearedEvent
		Expect(json.Unmarshal(w.msgs[0].Value, &decoded)).To(Succeed())
		Expect(decoded.EventType).To(Equal(eventstream.EventTypeHistoryCleared))
		Expect(decoded.Removed).To(Equal(3))
	})

	It("rejects nil cleared events", func() {
		Expect(p.PublishCleared(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(w.msgs).To(BeEmpty())
	})

	It("closes the writer", func() {
		Expect(p.Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})

	It("requires brokers", func() {
		_, err := kafka.NewPublisher(nil, "mnemo.turns")
		Expect(err).To(MatchError(kafka.ErrNoBrokers))
	})
})
