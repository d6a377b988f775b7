package aggregate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// HandleShardChanged folds the day of a shard event. Events carry no amounts, so duplicates and
// reordering are harmless.
func (a *Aggregator) HandleShardChanged(ctx context.Context, topic string, pack *pubsub.Pack, t time.Time) error {
	var event common.ShardCounterChanged
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		// A malformed event can never succeed, drop it.
		xcontext.Logger(ctx).Errorf("Cannot unmarshal shard event %s: %v", string(pack.Key), err)
		return nil
	}

	aggregate, err := a.Fold(ctx, event.Day)
	if err != nil {
		common.PromCounters[common.FoldTotal].WithLabelValues("failure").Inc()
		return err
	}

	common.PromCounters[common.FoldTotal].WithLabelValues("success").Inc()
	common.PromGauges[common.DailyAggregateTotal].WithLabelValues(event.Day).Set(float64(aggregate.Total))
	return nil
}
