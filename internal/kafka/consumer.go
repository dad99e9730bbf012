package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when processing succeeded and the offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// offerErr hands an error to the throttle channel without blocking. Nobody
// reads errs once the read loop has exited, so a worker must never wait on it.
func offerErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

func (c *Consumer) worker(ctx context.Context, jobs <-chan kafka.Message, errs chan<- error, h Handler) {
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			slog.Error("consumer worker", "err", err)
			offerErr(errs, err)
			continue
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			slog.Error("commit", "err", err)
			offerErr(errs, err)
		}
	}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go c.worker(ctx, jobs, errs, h)
	}

	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// back off when the workers are reporting failures
		select {
		case <-errs:
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}
