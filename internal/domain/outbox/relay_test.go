package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestRelay_PublishInOrderAndMark(t *testing.T) {
	ctx := testutil.MockContext()
	outboxRepo := repository.NewOutboxRepository()
	writer := NewWriter(outboxRepo)

	for i := int64(0); i < 3; i++ {
		err := writer.Append(ctx, common.DailyCounterTopic, common.DailyCounterKey("user1", "2024-03-10"),
			common.DailyCounterChanged{UserID: "user1", Day: "2024-03-10", Before: i, After: i + 1})
		require.NoError(t, err)
	}

	publisher := &testutil.RecordingPublisher{}
	relay := NewRelay(outboxRepo, publisher)

	n, err := relay.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, publisher.Messages, 3)

	for i, m := range publisher.Messages {
		require.Equal(t, common.DailyCounterTopic, m.Topic)
		require.Equal(t, "daily_counters/user1/2024-03-10", string(m.Pack.Key))

		var event common.DailyCounterChanged
		require.NoError(t, json.Unmarshal(m.Pack.Msg, &event))
		require.Equal(t, int64(i), event.Before)
	}

	// Nothing left to deliver.
	n, err = relay.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Len(t, publisher.Messages, 3)
}

func TestRelay_StopAtFirstFailure(t *testing.T) {
	ctx := testutil.MockContext()
	outboxRepo := repository.NewOutboxRepository()
	writer := NewWriter(outboxRepo)

	for i := 0; i < 3; i++ {
		err := writer.Append(ctx, common.ShardCounterTopic, common.ShardCounterKey("2024-03-10", i),
			common.ShardCounterChanged{Day: "2024-03-10", Shard: i})
		require.NoError(t, err)
	}

	calls := 0
	failing := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			calls++
			if calls == 2 {
				return errors.New("broker unavailable")
			}
			return nil
		},
	}

	n, err := NewRelay(outboxRepo, failing).RunOnce(ctx)
	require.Error(t, err)
	require.Equal(t, 1, n)

	// The failed event and everything after it are delivered on the next run.
	publisher := &testutil.RecordingPublisher{}
	n, err = NewRelay(outboxRepo, publisher).RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "shard_counters/2024-03-10/1", string(publisher.Messages[0].Pack.Key))
}
