package driver

import (
	"context"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
)

// Client is the process-wide entry point of the driver. It creates and
// connects attachments through the configured engine and holds the mutable
// default option sets applied when a call passes nil options.
//
// A Client is safe for concurrent use. Dispose it exactly once when the
// process shuts down; disposing twice is a no-op.
type Client struct {
	eng     engine.Engine
	cfg     Config
	logger  Logger
	tracer  Tracer
	metrics *Metrics

	// DefaultCreateDatabaseOptions and DefaultConnectOptions are applied
	// by CreateDatabase and Connect when called with nil options. They
	// are plain configuration: mutate them between calls, not while a
	// call using them is in flight.
	DefaultCreateDatabaseOptions CreateDatabaseOptions
	DefaultConnectOptions        ConnectOptions

	mu          sync.Mutex
	attachments map[uint64]*Attachment
	nextID      uint64
	disposed    bool
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithTracer enables span creation around driver operations.
func WithTracer(t Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithMetrics enables Prometheus instrumentation of driver operations.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client on top of the given engine.
func NewClient(eng engine.Engine, cfg Config, logger Logger, opts ...Option) *Client {
	if cfg.DefaultFetchSize <= 0 {
		cfg.DefaultFetchSize = DefaultFetchSize
	}
	c := &Client{
		eng:         eng,
		cfg:         cfg,
		logger:      logger,
		attachments: make(map[uint64]*Attachment),
		nextID:      1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateDatabase provisions a new database and returns an attachment to
// it. A nil options argument uses DefaultCreateDatabaseOptions.
func (c *Client) CreateDatabase(ctx context.Context, options *CreateDatabaseOptions) (*Attachment, error) {
	if options == nil {
		opts := c.DefaultCreateDatabaseOptions
		options = &opts
	}
	ctx, span := c.span(ctx, "ember.create-database")
	handle, err := c.eng.CreateDatabase(ctx, options.Locator(), options.engineOptions())
	if err != nil {
		err = wrapEngine(ErrConnection, err)
		c.endSpan(span, err)
		c.logger.Error("failed to create database", err, map[string]interface{}{
			"locator": options.Locator(),
		})
		return nil, err
	}
	c.endSpan(span, nil)

	a, err := c.adopt(handle, options.Locator())
	if err != nil {
		return nil, err
	}
	c.logger.Info("database created", nil, map[string]interface{}{
		"locator": options.Locator(),
	})
	return a, nil
}

// Connect opens an attachment to an existing database. A nil options
// argument uses DefaultConnectOptions.
func (c *Client) Connect(ctx context.Context, options *ConnectOptions) (*Attachment, error) {
	if options == nil {
		opts := c.DefaultConnectOptions
		options = &opts
	}
	ctx, span := c.span(ctx, "ember.connect")
	handle, err := c.eng.Connect(ctx, options.Locator(), options.engineOptions())
	if err != nil {
		err = wrapEngine(ErrConnection, err)
		c.endSpan(span, err)
		c.logger.Error("failed to connect", err, map[string]interface{}{
			"locator": options.Locator(),
		})
		return nil, err
	}
	c.endSpan(span, nil)

	a, err := c.adopt(handle, options.Locator())
	if err != nil {
		return nil, err
	}
	c.logger.Debug("connected", nil, map[string]interface{}{
		"locator": options.Locator(),
	})
	return a, nil
}

// adopt registers a freshly opened connection handle as an attachment. If
// the client was disposed while the connect was in flight, the connection
// is closed again and the call fails.
func (c *Client) adopt(handle engine.Handle, locator string) (*Attachment, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		_ = c.eng.Disconnect(context.Background(), handle)
		return nil, errDisposed("client")
	}
	id := c.nextID
	c.nextID++
	a := newAttachment(c, id, handle, locator)
	c.attachments[id] = a
	c.mu.Unlock()
	return a, nil
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.attachments, id)
	c.mu.Unlock()
}

// Dispose shuts the client down. Attachments still open are forcefully
// disconnected and all their derived resources invalidated. Dispose is
// idempotent.
func (c *Client) Dispose(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	remaining := make([]*Attachment, 0, len(c.attachments))
	for _, a := range c.attachments {
		remaining = append(remaining, a)
	}
	c.attachments = make(map[uint64]*Attachment)
	c.mu.Unlock()

	for _, a := range remaining {
		c.logger.Warn("attachment still open at client dispose, disconnecting", nil, map[string]interface{}{
			"locator": a.locator,
		})
		if err := a.Disconnect(ctx); err != nil {
			c.logger.Error("forced disconnect failed", err, map[string]interface{}{
				"locator": a.locator,
			})
		}
	}
	c.logger.Info("driver client disposed", nil, nil)
	return nil
}
