package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line of hold for shell completion.
func Completion() *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"ledger-file":   predict.Files("*.json"),
			"redis-addr":    predict.Something,
			"redis-key":     predict.Something,
			"quote-ttl":     predict.Something,
			"rate-ttl":      predict.Something,
			"timeout":       predict.Something,
			"fallback-rate": predict.Something,
			"quote-url":     predict.Something,
			"rate-url":      predict.Something,
			"rps":           predict.Something,
			"markdown":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"add": {
				Flags: map[string]complete.Predictor{
					"type":   predict.Set{"equity", "etf"},
					"market": predict.Set{"a", "hk"},
					"s":      predict.Something,
					"n":      predict.Something,
					"c":      predict.Something,
				},
			},
			"remove":  {Args: predict.Something},
			"refresh": {},
			"fmt":     {},
			"summary": {
				Flags: map[string]complete.Predictor{"refresh": predict.Nothing},
			},
			"watch": {
				Flags: map[string]complete.Predictor{"every": predict.Set{"1m", "5m", "15m", "1h"}},
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
