package census

import (
	"fmt"
	"slices"

	"github.com/randalmurphal/census/pkg/census/config"
	"github.com/randalmurphal/census/pkg/census/observability"
)

// Configuration keys understood by FromConfig.
const (
	keyName            = "name"
	keyCompactionRatio = "compaction_ratio"
	keyMetrics         = "metrics"
	keyTracing         = "tracing"
)

var configKeys = []string{keyName, keyCompactionRatio, keyMetrics, keyTracing}

// FromConfig translates a configuration block into options.
//
// Recognized keys:
//   - name (string): WithName
//   - compaction_ratio (non-negative int): WithCompactionRatio
//   - metrics (bool): WithMetrics(observability.NewMetricsRecorder())
//   - tracing (bool): WithTracing
//
// Missing keys leave the defaults in place. An unknown key, a value of the
// wrong type, or a negative ratio is an error naming the key; no options
// are returned in that case.
//
// Example:
//
//	cfg, err := config.FromFile("census.yaml")
//	if err != nil {
//	    return err
//	}
//	opts, err := census.FromConfig(cfg.Section("sessions"))
//	if err != nil {
//	    return err
//	}
//	inv := census.New[*Session](opts...)
func FromConfig(cfg config.Config) ([]Option, error) {
	keys := cfg.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		if !slices.Contains(configKeys, k) {
			return nil, fmt.Errorf("%s: %w", k, ErrUnknownConfigKey)
		}
	}

	var opts []Option

	name, ok, err := cfg.LookupString(keyName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyName, err)
	}
	if ok {
		opts = append(opts, WithName(name))
	}

	ratio, ok, err := cfg.LookupInt(keyCompactionRatio)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyCompactionRatio, err)
	}
	if ok {
		if ratio < 0 {
			return nil, fmt.Errorf("%s: %w: %d", keyCompactionRatio, ErrNegativeCompactionRatio, ratio)
		}
		opts = append(opts, WithCompactionRatio(ratio))
	}

	metrics, _, err := cfg.LookupBool(keyMetrics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyMetrics, err)
	}
	if metrics {
		opts = append(opts, WithMetrics(observability.NewMetricsRecorder()))
	}

	tracing, ok, err := cfg.LookupBool(keyTracing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyTracing, err)
	}
	if ok {
		opts = append(opts, WithTracing(tracing))
	}

	return opts, nil
}
