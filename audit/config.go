package audit

import "fmt"

// Sink kinds.
const (
	SinkFile   = "file"
	SinkRedis  = "redis"
	SinkMulti  = "multi"
	SinkStdout = "stdout"
)

// Config holds audit sink configuration.
type Config struct {
	// Sink selects where records go. multi writes to both the file and the stream.
	Sink string `mapstructure:"sink"`

	// Path is the append-only log file used by the file sink.
	Path string `mapstructure:"path"`

	// Stream is the Redis stream key used by the redis sink.
	Stream string `mapstructure:"stream"`

	// MaxLen approximately caps the stream length. 0 disables trimming.
	MaxLen int64 `mapstructure:"max_len"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Sink == "" {
		c.Sink = SinkFile
	}
	if c.Path == "" {
		c.Path = "error.log"
	}
	if c.Stream == "" {
		c.Stream = "audit:failures"
	}
}

// Validate checks the sink selection and its required settings.
func (c *Config) Validate() error {
	switch c.Sink {
	case SinkFile, SinkRedis, SinkMulti, SinkStdout:
	default:
		return fmt.Errorf("audit.sink must be one of [file redis multi stdout] (got: %s)", c.Sink)
	}
	if c.usesFile() && c.Path == "" {
		return fmt.Errorf("audit.path is required for sink %s", c.Sink)
	}
	if c.usesRedis() && c.Stream == "" {
		return fmt.Errorf("audit.stream is required for sink %s", c.Sink)
	}
	if c.MaxLen < 0 {
		return fmt.Errorf("audit.max_len must be >= 0")
	}
	return nil
}

func (c *Config) usesFile() bool  { return c.Sink == SinkFile || c.Sink == SinkMulti }
func (c *Config) usesRedis() bool { return c.Sink == SinkRedis || c.Sink == SinkMulti }
