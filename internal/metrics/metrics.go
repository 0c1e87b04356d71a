package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "ledger_transactions_total",
		Help:      "Ledger writes by type and outcome.",
	}, []string{"type", "outcome"})

	ledgerUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "ledger_units_total",
		Help:      "Units moved by committed ledger entries.",
	}, []string{"type"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})
)

func LedgerRecorded(txType string, quantity int) {
	ledgerTransactions.WithLabelValues(txType, "recorded").Inc()
	ledgerUnits.WithLabelValues(txType).Add(float64(quantity))
}

// LedgerRejected counts a write that left stock untouched.
func LedgerRejected(txType, reason string) {
	if txType == "" {
		txType = "unknown"
	}
	ledgerTransactions.WithLabelValues(txType, reason).Inc()
}

func LoginAttempt(ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	loginAttempts.WithLabelValues(outcome).Inc()
}
