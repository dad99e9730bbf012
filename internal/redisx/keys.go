package redisx

import "time"

const (
	// First-response-wins guard per review prompt: review:resolve:{review_id} -> outcome
	KeyReviewResolve = "review:resolve:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLReviewResolve = 48 * time.Hour
	TTLDedup         = 48 * time.Hour
)
