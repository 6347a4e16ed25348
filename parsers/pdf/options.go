package pdf

import "log/slog"

type options struct {
	strategy Strategy
	keywords []string
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*options)

// WithStrategy selects the extraction strategy. Unknown values fall back
// to StrategyAuto.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		switch s {
		case StrategyFast, StrategyTables, StrategyAuto:
			o.strategy = s
		default:
			o.strategy = StrategyAuto
		}
	}
}

// WithKeywords replaces the keyword list used by Parse. An empty list
// keeps the defaults.
func WithKeywords(keywords ...string) Option {
	return func(o *options) {
		if len(keywords) > 0 {
			o.keywords = keywords
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		strategy: StrategyAuto,
		keywords: DefaultKeywords(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
