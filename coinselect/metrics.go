// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import "github.com/prometheus/client_golang/prometheus"

var (
	reservedOutputs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ledgercore",
		Name:      "reserved_outputs",
		Help:      "Number of UTXOs reserved by coin selection; releases are not subtracted.",
	})

	insufficientFunds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgercore",
		Name:      "coinselect_insufficient_funds_total",
		Help:      "Total coin selection attempts that failed for lack of spendable funds.",
	})
)

func init() {
	prometheus.MustRegister(reservedOutputs, insufficientFunds)
}
