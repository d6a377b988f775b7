package kafka

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type subscriber struct {
	groupID     string
	brokerAddrs []string
	topics      []string
	client      sarama.ConsumerGroup
	handler     pubsub.SubscribeHandler
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) (*subscriber, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Offsets.AutoCommit.Enable = true

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		groupID:     groupID,
		brokerAddrs: brokerAddrs,
		topics:      topics,
		client:      client,
		handler:     handler,
	}, nil
}

func (g *subscriber) Stop(ctx context.Context) error {
	return g.client.Close()
}

// Subscribe consumes until ctx is cancelled. Consume returns on every server-side rebalance, so
// it is called in a loop.
func (g *subscriber) Subscribe(ctx context.Context) {
	consumer := consumerGroupHandler{ctx: ctx, fn: g.handler}
	for {
		if err := g.client.Consume(ctx, g.topics, &consumer); err != nil {
			xcontext.Logger(ctx).Errorf("Error from consumer %s: %v", g.groupID, err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

type consumerGroupHandler struct {
	ctx context.Context
	fn  pubsub.SubscribeHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message only after its handler succeeded. A failing handler is retried
// with backoff until it succeeds or the session ends, so delivery is at-least-once.
func (h *consumerGroupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	for message := range claim.Messages() {
		pack := &pubsub.Pack{Key: message.Key, Msg: message.Value}

		// The session context only carries cancellation; values come from the process context.
		ctx := xcontext.WithCancelFrom(h.ctx, session.Context())
		err := backoff.Retry(func() error {
			err := h.fn(ctx, message.Topic, pack, message.Timestamp)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot handle message %s of topic %s: %v",
					string(message.Key), message.Topic, err)
			}
			return err
		}, backoff.WithContext(newHandlerBackOff(), session.Context()))
		if err != nil {
			// Session ended before the handler succeeded; the message will be redelivered.
			return nil
		}

		session.MarkMessage(message, "")
	}

	return nil
}

func newHandlerBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}
