// Package auditor settles order rows from review events. The workflow never
// reads orders back; this keeps the audit trail consistent asynchronously.
package auditor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkax "github.com/elfshop/storebot/internal/kafka"
	"github.com/elfshop/storebot/internal/redisx"
	"github.com/elfshop/storebot/internal/shop"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Orders interface {
	SettleStatus(ctx context.Context, orderID int64, to shop.Status) error
}

type Service struct {
	Orders      Orders
	Redis       *redis.Client
	ServiceName string
	Log         *slog.Logger
}

// HandleReviewResolved is the consumer handler. Safe under re-delivery:
// dedup by event id, and SettleStatus ignores already-settled rows.
func (s *Service) HandleReviewResolved(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventReviewResolved {
		return nil
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		exists, _ := redisx.Exists(ctx, s.Redis, dkey)
		if exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[shop.ReviewResolvedPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.Orders.SettleStatus(ctx, p.OrderID, p.Outcome); err != nil {
		return err
	}
	s.Log.Info("order settled", "order_id", p.OrderID, "outcome", p.Outcome)
	return nil
}
