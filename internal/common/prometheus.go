package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	GrantTotal                 = "ledger_grant_total"
	GrantAdmittedAmount        = "ledger_grant_admitted_amount"
	TransactionRetryExhausted  = "ledger_transaction_retry_exhausted_total"
	FoldTotal                  = "ledger_fold_total"
	ReferralActivationTotal    = "ledger_referral_activation_total"
	OutboxPublishedTotal       = "ledger_outbox_published_total"
	DailyAggregateTotal        = "ledger_daily_aggregate_total"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		DailyAggregateTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: DailyAggregateTotal,
			Help: "Last folded global total of a reward day",
		}, []string{"day"}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		GrantTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: GrantTotal,
			Help: "Count of grant operations by outcome",
		}, []string{"source", "outcome"}),
		GrantAdmittedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: GrantAdmittedAmount,
			Help: "Sum of admitted tickets",
		}, []string{"source"}),
		TransactionRetryExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: TransactionRetryExhausted,
			Help: "Count of transactions abandoned after contention retries",
		}, []string{"operation"}),
		FoldTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: FoldTotal,
			Help: "Count of aggregate folds by result",
		}, []string{"result"}),
		ReferralActivationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ReferralActivationTotal,
			Help: "Count of referral threshold crossings by resolution stage",
		}, []string{"stage"}),
		OutboxPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: OutboxPublishedTotal,
			Help: "Count of outbox events relayed to the event bus",
		}, []string{"topic"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)
