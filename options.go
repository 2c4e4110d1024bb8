package qf

// CounterWidth names the integer width backing one of the framework's
// bounded counters (event size, time-event countdown, queue depth, pool
// block count, pool block size). The widths are recorded in Config; the
// framework does not check any counter against them, and its counters
// are Go integers of fixed type regardless of the configured width.
type CounterWidth uint8

const (
	Width8  CounterWidth = 1
	Width16 CounterWidth = 2
	Width32 CounterWidth = 4
)

func (w CounterWidth) max() uint64 {
	switch w {
	case Width8:
		return 1<<8 - 1
	case Width16:
		return 1<<16 - 1
	default:
		return 1<<32 - 1
	}
}

// Config holds the framework's compile-time parameters, resolved at
// construction time instead of via preprocessor macros.
type Config struct {
	// MaxActive is the largest permitted AO priority, in [1, 63].
	MaxActive uint8
	// MaxEPool is the number of fixed-block event pools the framework can
	// register.
	MaxEPool uint8
	// MaxTickRate is the number of independent time-event tick channels.
	MaxTickRate uint8

	EventSizSize   CounterWidth
	TimeEvtCtrSize CounterWidth
	EQueueCtrSize  CounterWidth
	MPoolCtrSize   CounterWidth
	MPoolSizSize   CounterWidth

	// Kernel selects the scheduling model.
	Kernel Kernel

	logger           Logger
	assertionHandler AssertionHandler
	traceEmitter     TraceEmitter
	collaborator     Collaborator
	metrics          *DispatchMetrics
}

func defaultConfig() *Config {
	return &Config{
		MaxActive:      32,
		MaxEPool:       3,
		MaxTickRate:    1,
		EventSizSize:   Width16,
		TimeEvtCtrSize: Width16,
		EQueueCtrSize:  Width8,
		MPoolCtrSize:   Width16,
		MPoolSizSize:   Width32,
		Kernel:         KernelVanilla,
		logger:         NewNoOpLogger(),
	}
}

// Option configures a Framework at construction time, following the
// common closure-over-a-private-struct functional-options pattern.
type Option interface {
	apply(*Config) error
}

type optionFunc func(*Config) error

func (f optionFunc) apply(c *Config) error { return f(c) }

// WithMaxActive sets Config.MaxActive. Must be in [1, 63].
func WithMaxActive(n uint8) Option {
	return optionFunc(func(c *Config) error {
		if n == 0 || n > 63 {
			return &ContractViolation{Module: "qf.options", Msg: "MaxActive must be in [1,63]"}
		}
		c.MaxActive = n
		return nil
	})
}

// WithMaxEPool sets Config.MaxEPool.
func WithMaxEPool(n uint8) Option {
	return optionFunc(func(c *Config) error {
		if n == 0 {
			return &ContractViolation{Module: "qf.options", Msg: "MaxEPool must be > 0"}
		}
		c.MaxEPool = n
		return nil
	})
}

// WithMaxTickRate sets Config.MaxTickRate.
func WithMaxTickRate(n uint8) Option {
	return optionFunc(func(c *Config) error {
		if n == 0 {
			return &ContractViolation{Module: "qf.options", Msg: "MaxTickRate must be > 0"}
		}
		c.MaxTickRate = n
		return nil
	})
}

// WithCounterWidths overrides the default bounded-counter widths.
func WithCounterWidths(eventSiz, timeEvtCtr, eQueueCtr, mPoolCtr, mPoolSiz CounterWidth) Option {
	return optionFunc(func(c *Config) error {
		c.EventSizSize = eventSiz
		c.TimeEvtCtrSize = timeEvtCtr
		c.EQueueCtrSize = eQueueCtr
		c.MPoolCtrSize = mPoolCtr
		c.MPoolSizSize = mPoolSiz
		return nil
	})
}

// WithLogger overrides the default no-op Logger. Passing nil is accepted
// and falls back to the no-op logger rather than panicking.
func WithLogger(l Logger) Option {
	return optionFunc(func(c *Config) error {
		if l == nil {
			l = NewNoOpLogger()
		}
		c.logger = l
		return nil
	})
}

// WithAssertionHandler registers the collaborator notified on every
// contract violation, before the framework panics.
func WithAssertionHandler(h AssertionHandler) Option {
	return optionFunc(func(c *Config) error {
		c.assertionHandler = h
		return nil
	})
}

// WithTraceEmitter registers the optional trace collaborator.
func WithTraceEmitter(t TraceEmitter) Option {
	return optionFunc(func(c *Config) error {
		c.traceEmitter = t
		return nil
	})
}

// WithCollaborator registers the board-support collaborator.
func WithCollaborator(bsp Collaborator) Option {
	return optionFunc(func(c *Config) error {
		c.collaborator = bsp
		return nil
	})
}

// WithMetrics attaches a DispatchMetrics tracker; every RTC step's
// latency is observed into it once Run starts.
func WithMetrics(m *DispatchMetrics) Option {
	return optionFunc(func(c *Config) error {
		c.metrics = m
		return nil
	})
}

// WithKernel selects the scheduling model. Default is
// KernelVanilla.
func WithKernel(k Kernel) Option {
	return optionFunc(func(c *Config) error {
		if k != KernelVanilla && k != KernelQK {
			return &ContractViolation{Module: "qf.options", Msg: "unknown kernel"}
		}
		c.Kernel = k
		return nil
	})
}

func resolveConfig(opts []Option) (*Config, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
