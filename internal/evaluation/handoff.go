package evaluation

import (
	"context"
	"fmt"

	"github.com/abhisek/prepwise/internal/store"
)

// Key-value keys for the question/answer hand-off between the answer
// screen and later evaluation runs.
const (
	KeyHandoffQuestion = "handoff.question"
	KeyHandoffResponse = "handoff.response"
	KeyHandoffMode     = "handoff.mode"
	KeyHandoffType     = "handoff.type"
)

// SaveHandoff stores req as the most recent question and answer. The
// four keys are written together, so a failed save leaves the previous
// hand-off intact.
func SaveHandoff(ctx context.Context, kv store.KVRepo, req Request) error {
	err := kv.SetAll(ctx, map[string]string{
		KeyHandoffQuestion: req.Question,
		KeyHandoffResponse: req.Answer,
		KeyHandoffMode:     string(req.RatingMode),
		KeyHandoffType:     string(req.Type),
	})
	if err != nil {
		return fmt.Errorf("save hand-off: %w", err)
	}
	return nil
}

// LoadHandoff returns the last saved request. ok is false when nothing
// has been handed off yet.
func LoadHandoff(ctx context.Context, kv store.KVRepo) (req Request, ok bool, err error) {
	values, err := kv.List(ctx, "handoff.")
	if err != nil {
		return Request{}, false, fmt.Errorf("load hand-off: %w", err)
	}
	req = Request{
		Question:   values[KeyHandoffQuestion],
		Answer:     values[KeyHandoffResponse],
		RatingMode: RatingMode(values[KeyHandoffMode]),
		Type:       Type(values[KeyHandoffType]),
	}
	if req.Question == "" && req.Answer == "" {
		return Request{}, false, nil
	}
	return req, true, nil
}
