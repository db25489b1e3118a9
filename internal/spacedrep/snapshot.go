package spacedrep

import (
	"github.com/abhisek/conjuga/internal/store"
	"github.com/abhisek/conjuga/internal/verb"
)

func toRow(userID string, rs *ReviewState) store.ReviewRow {
	return store.ReviewRow{
		UserID:          userID,
		Mood:            string(rs.Cell.Mood),
		Tense:           string(rs.Cell.Tense),
		Person:          string(rs.Cell.Person),
		Stage:           rs.Stage,
		ConsecutiveHits: rs.ConsecutiveHits,
		Graduated:       rs.Graduated,
		NextReview:      rs.NextReviewDate,
		LastReview:      rs.LastReviewDate,
	}
}

func fromRow(row store.ReviewRow) *ReviewState {
	return &ReviewState{
		Cell: Cell{
			Mood:   verb.Mood(row.Mood),
			Tense:  verb.Tense(row.Tense),
			Person: verb.Person(row.Person),
		},
		Stage:           row.Stage,
		NextReviewDate:  row.NextReview,
		ConsecutiveHits: row.ConsecutiveHits,
		Graduated:       row.Graduated,
		LastReviewDate:  row.LastReview,
	}
}
