package audit

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/accounts/component"
	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/redis"
)

// Component opens the configured sink on Start and installs it into its Logger.
type Component struct {
	cfg    Config
	redis  *redis.Component
	logger *Logger
	log    *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the audit component. redisComp is required for the
// redis and multi sinks and must be registered before this component.
func NewComponent(cfg Config, redisComp *redis.Component, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{
		cfg:    cfg,
		redis:  redisComp,
		logger: NewLogger(nil, log),
		log:    log.WithComponent("audit"),
	}
}

// Logger returns the recorder handed to the failure pipeline.
func (c *Component) Logger() *Logger { return c.logger }

// Name returns the component name.
func (c *Component) Name() string { return "audit" }

// Start opens the sink.
func (c *Component) Start(_ context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("audit config: %w", err)
	}
	sink, err := c.openSink()
	if err != nil {
		return err
	}
	c.logger.SetSink(sink)
	return nil
}

func (c *Component) openSink() (Sink, error) {
	switch c.cfg.Sink {
	case SinkStdout:
		return NewWriterSink(os.Stdout), nil
	case SinkFile:
		return NewFileSink(c.cfg.Path)
	}

	if c.redis == nil || c.redis.Client() == nil {
		return nil, fmt.Errorf("audit sink %s requires a started redis component", c.cfg.Sink)
	}
	rs := NewRedisSink(c.redis.Client(), c.cfg.Stream, c.cfg.MaxLen)
	if c.cfg.Sink == SinkRedis {
		return rs, nil
	}

	fs, err := NewFileSink(c.cfg.Path)
	if err != nil {
		return nil, err
	}
	return MultiSink{fs, rs}, nil
}

// Stop detaches and closes the sink. Later records are dropped with a warning.
func (c *Component) Stop(_ context.Context) error {
	if prev := c.logger.SetSink(nil); prev != nil {
		return prev.Close()
	}
	return nil
}

// Health reports whether a sink is installed.
func (c *Component) Health(_ context.Context) component.Health {
	c.logger.mu.RLock()
	ready := c.logger.sink != nil
	c.logger.mu.RUnlock()

	if !ready {
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: "audit sink not open"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a startup summary of the sink.
func (c *Component) Describe() component.Description {
	details := c.cfg.Sink
	switch c.cfg.Sink {
	case SinkFile:
		details += " " + c.cfg.Path
	case SinkRedis:
		details += " " + c.cfg.Stream
	case SinkMulti:
		details += " " + c.cfg.Path + "," + c.cfg.Stream
	}
	return component.Description{Name: "Audit", Type: "audit", Details: details}
}
