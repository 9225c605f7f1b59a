package link

import (
	"fmt"
	"time"

	"github.com/arloliu/go-packetlink/checksum"
	"github.com/arloliu/go-packetlink/logger"
)

// Default client settings.
const (
	DefaultWaitTime    = 1 * time.Second
	DefaultResendLimit = 0
)

// MaxResendLimit bounds the resend limit of a client.
const MaxResendLimit = 255

// clientConfig holds the settings of a Client. Settings are copied into every packet the
// client creates.
type clientConfig struct {
	name string

	format Format

	waitTime    time.Duration
	resendLimit int

	poolSize int

	// customParse hands frame extraction to the FrameParser of the parser.
	customParse bool

	parser PacketParser
	hooks  Hooks

	registry *Registry
	logger   logger.Logger
}

func newClientConfig(opts ...ClientOption) (*clientConfig, error) {
	cfg := &clientConfig{
		format: Format{
			Checksum:  checksum.New(checksum.None),
			ByteOrder: LittleEndian,
		},
		waitTime:    DefaultWaitTime,
		resendLimit: DefaultResendLimit,
		poolSize:    DefaultPoolSize,
		registry:    DefaultRegistry,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.format.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ClientOption is a functional option for configuring a Client.
type ClientOption interface {
	apply(cfg *clientConfig) error
}

type clientOptFunc func(*clientConfig) error

func (f clientOptFunc) apply(cfg *clientConfig) error { return f(cfg) }

// WithName sets the name used in log records of the client.
func WithName(name string) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.name = name
		return nil
	})
}

// WithFormat sets the whole frame format.
func WithFormat(f Format) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.format = f
		return nil
	})
}

// WithBeginMarker sets the marker opening every frame. The zero Marker disables it.
func WithBeginMarker(m Marker) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.format.Begin = m
		return nil
	})
}

// WithEndMarker sets the marker closing every frame. The zero Marker disables it.
func WithEndMarker(m Marker) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.format.End = m
		return nil
	})
}

// WithChecksum sets the checksum algorithm and placement.
func WithChecksum(spec checksum.Spec) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		cfg.format.Checksum = spec

		return nil
	})
}

// WithChecksumKind sets a canonical checksum kind with a trailing checksum over the whole frame.
func WithChecksumKind(kind checksum.Kind) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		spec := checksum.New(kind)
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		cfg.format.Checksum = spec

		return nil
	})
}

// WithByteOrder sets the byte order of markers, checksums and multi-byte payload values.
func WithByteOrder(order ByteOrder) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if order != BigEndian && order != LittleEndian {
			return fmt.Errorf("%w: byte order %d", ErrInvalidOption, order)
		}
		cfg.format.ByteOrder = order

		return nil
	})
}

// WithMinimumSize sets the minimum frame size accepted by the parser.
func WithMinimumSize(n int) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: minimum size %d is negative", ErrInvalidOption, n)
		}
		cfg.format.MinimumSize = n

		return nil
	})
}

// WithWaitTime sets the default per-attempt reply wait time. WaitInfinite waits forever.
func WithWaitTime(d time.Duration) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if d < 0 && d != WaitInfinite && d != WaitTransport {
			return fmt.Errorf("%w: wait time %v", ErrInvalidOption, d)
		}
		cfg.waitTime = d

		return nil
	})
}

// WithResendLimit sets the default resend limit. ResendNever sends without expecting replies.
func WithResendLimit(n int) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if (n < ResendNever && n != ResendTransport) || n > MaxResendLimit {
			return fmt.Errorf("%w: resend limit %d out of range [%d, %d]", ErrInvalidOption, n, ResendNever, MaxResendLimit)
		}
		cfg.resendLimit = n

		return nil
	})
}

// WithTransportDefaults makes packets using the client defaults take their wait time and
// resend limit from the medium, when it implements TransportDefaults.
func WithTransportDefaults() ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.waitTime = WaitTransport
		cfg.resendLimit = ResendTransport

		return nil
	})
}

// WithPoolSize caps the number of idle packets kept for reuse.
func WithPoolSize(n int) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: pool size %d is negative", ErrInvalidOption, n)
		}
		cfg.poolSize = n

		return nil
	})
}

// WithPacketParser sets the protocol parser. Its capabilities take precedence over Hooks.
func WithPacketParser(p PacketParser) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.parser = p
		return nil
	})
}

// WithHooks sets callback functions of the client.
func WithHooks(h Hooks) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.hooks = h
		return nil
	})
}

// WithCustomParse enables frame extraction by the FrameParser of the parser or Hooks.OnParse.
func WithCustomParse(enabled bool) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		cfg.customParse = enabled
		return nil
	})
}

// WithRegistry sets the scheduler registry the client attaches through.
func WithRegistry(r *Registry) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if r == nil {
			return fmt.Errorf("%w: nil registry", ErrInvalidOption)
		}
		cfg.registry = r

		return nil
	})
}

// WithLogger sets the logger of the client.
func WithLogger(l logger.Logger) ClientOption {
	return clientOptFunc(func(cfg *clientConfig) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		cfg.logger = l

		return nil
	})
}
