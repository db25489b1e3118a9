package session

import (
	"context"

	"github.com/abhisek/conjuga/internal/scheduler"
)

// Answerer grades a presented item on behalf of a simulated learner.
type Answerer func(res *scheduler.Result) bool

// Run serves n items and answers each with answer. tick, when set, is
// called after every item so callers can advance a fake clock.
func Run(ctx context.Context, s *Session, n int, answer Answerer, tick func()) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.Next(ctx)
		if err != nil {
			return err
		}
		if !res.IsSentinel && !res.Rejected {
			if _, err := s.Answer(ctx, answer(res)); err != nil {
				return err
			}
		}
		if tick != nil {
			tick()
		}
	}
	return nil
}
