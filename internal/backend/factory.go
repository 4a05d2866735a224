package backend

import (
	"context"

	"github.com/cockroachdb/errors"

	"liquidity/internal/amqp"
	"liquidity/internal/log"
	"liquidity/internal/storage"
	"liquidity/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the configured store and, when AMQP is configured,
// a publisher. An unreachable broker only disables events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}
	closers := []func() error{store.Close}

	if publisher := f.createPublisher(config); publisher != nil {
		result.Publisher = publisher
		closers = append(closers, publisher.Close)
	}

	result.Cleanup = func() error {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = errors.CombineErrors(errs, err)
			}
		}
		return errs
	}

	return result, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.Store, error) {
	logger := f.logger.WithComponent(log.ComponentStorage)
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize SQLite store")
		}
		logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return store, nil
	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		return nil, errors.Newf("unsupported backend type: %s", config.Type)
	}
}

// createPublisher connects to the broker and queues events in front of it, so
// engine operations never wait on a publish.
func (f *DefaultFactory) createPublisher(config Config) *amqp.AsyncPublisher {
	logger := f.logger.WithComponent(log.ComponentAMQP)
	if config.AMQPURL == "" {
		logger.Info("AMQP disabled - occurrence events will not be published")
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}

	logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue,
		"queue_size", config.EventQueueSize)
	return amqp.NewAsyncPublisher(client, config.EventQueueSize, logger.Logger)
}
