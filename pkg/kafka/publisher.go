package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type publisher struct {
	clientID    string
	brokerAddrs []string
	producer    sarama.SyncProducer
}

func NewPublisher(clientID string, brokerAddrs []string) (*publisher, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Producer.Retry.Max = 5
	config.Net.MaxOpenRequests = 1
	config.Version = sarama.V2_1_0_0

	producer, err := sarama.NewSyncProducer(brokerAddrs, config)
	if err != nil {
		return nil, err
	}

	return &publisher{
		clientID:    clientID,
		brokerAddrs: brokerAddrs,
		producer:    producer,
	}, nil
}

func (p *publisher) Stop(ctx context.Context) error {
	return p.producer.Close()
}

// Publish blocks until the message is acknowledged by all in-sync replicas. Messages sharing a
// key land on the same partition, so they are consumed in publish order.
func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(pack.Key),
		Value: sarama.ByteEncoder(pack.Msg),
	})
	if err != nil {
		return fmt.Errorf("cannot publish to %s: %w", topic, err)
	}

	xcontext.Logger(ctx).Debugf("Published %s to %s[%d]@%d", pack.Key, topic, partition, offset)
	return nil
}
