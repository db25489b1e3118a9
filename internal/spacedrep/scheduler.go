// Package spacedrep schedules paradigm cells for review on an expanding
// interval and serves the cells that are due.
package spacedrep

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/conjuga/internal/logger"
	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/store"
)

// Scheduler manages spaced repetition review scheduling.
type Scheduler struct {
	repo store.ReviewRepo
	log  *logger.Logger
}

// NewScheduler creates a scheduler persisting to repo.
func NewScheduler(repo store.ReviewRepo, log *logger.Logger) *Scheduler {
	return &Scheduler{repo: repo, log: logger.OrNop(log)}
}

// RecordReview updates the review schedule after an answer. A cell seen for
// the first time starts at stage 0; a miss leaves it due immediately.
func (s *Scheduler) RecordReview(ctx context.Context, userID string, cell Cell, correct bool, now time.Time) (*ReviewState, error) {
	row, err := s.repo.Get(ctx, userID, string(cell.Mood), string(cell.Tense), string(cell.Person))
	if err != nil {
		return nil, fmt.Errorf("load review state: %w", err)
	}

	var rs *ReviewState
	if row == nil {
		rs = &ReviewState{Cell: cell, NextReviewDate: now}
		if correct {
			rs.ConsecutiveHits = 1
			rs.NextReviewDate = now.AddDate(0, 0, BaseIntervals[0])
		}
	} else {
		rs = fromRow(*row)
		if correct {
			rs.ConsecutiveHits++

			if !rs.Graduated {
				rs.Stage++
				if rs.ConsecutiveHits >= GraduationStage {
					rs.Graduated = true
				}
			}
			rs.NextReviewDate = now.AddDate(0, 0, rs.CurrentIntervalDays())
		} else {
			rs.ConsecutiveHits = 0
			rs.NextReviewDate = now
		}
	}
	rs.LastReviewDate = now

	if err := s.repo.Upsert(ctx, toRow(userID, rs)); err != nil {
		return nil, fmt.Errorf("save review state: %w", err)
	}
	s.log.Debug("review recorded", "user", userID, "cell", cell.ID(), "stage", rs.Stage, "next", rs.NextReviewDate)
	return rs, nil
}

// DueStates returns the cells due at now, most overdue first.
func (s *Scheduler) DueStates(ctx context.Context, userID string, now time.Time) ([]*ReviewState, error) {
	rows, err := s.repo.Due(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("query due reviews: %w", err)
	}
	due := make([]*ReviewState, 0, len(rows))
	for _, row := range rows {
		due = append(due, fromRow(row))
	}
	sort.SliceStable(due, func(i, j int) bool {
		oi, oj := due[i].OverdueDays(now), due[j].OverdueDays(now)
		if oi != oj {
			return oi > oj
		}
		return due[i].Cell.ID() < due[j].Cell.ID()
	})
	return due, nil
}

// DueItems serves the due cells to the selector.
func (s *Scheduler) DueItems(ctx context.Context, userID string, now time.Time) ([]scheduler.DueItem, error) {
	due, err := s.DueStates(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	items := make([]scheduler.DueItem, len(due))
	for i, rs := range due {
		items[i] = scheduler.DueItem{
			Mood:    rs.Cell.Mood,
			Tense:   rs.Cell.Tense,
			Person:  rs.Cell.Person,
			NextDue: rs.NextReviewDate,
			ItemID:  rs.Cell.ID(),
		}
	}
	return items, nil
}

// States returns every tracked cell of a user.
func (s *Scheduler) States(ctx context.Context, userID string) ([]*ReviewState, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out := make([]*ReviewState, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}
