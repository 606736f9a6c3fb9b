// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mood

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/identity"
	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/store"
)

var (
	// ErrAlreadyVoted is the only failure Submit reports once input is valid.
	ErrAlreadyVoted   = errors.New("already voted today")
	ErrInvalidEmotion = errors.New("invalid emotion")
)

// Requester is the request metadata identity is derived from.
type Requester struct {
	IP        string
	UserAgent string
}

// Invalidator is told when a day's aggregates change.
type Invalidator interface {
	Invalidate(ctx context.Context, day string)
}

// VoteService records one vote per identity per UTC day.
type VoteService struct {
	store   *store.Store
	secret  string
	metrics *metrics.Metrics
	inv     Invalidator
}

// NewVoteService wires the submission path. inv may be nil.
func NewVoteService(s *store.Store, secret string, m *metrics.Metrics, inv Invalidator) *VoteService {
	return &VoteService{store: s, secret: secret, metrics: m, inv: inv}
}

// Submit appends the vote to the ledger and bumps the matching aggregate cell
// in one transaction. It returns the UTC hour the vote counted toward.
//
// Every transaction failure, duplicate or not, comes back as ErrAlreadyVoted;
// the underlying cause is only logged.
func (vs *VoteService) Submit(ctx context.Context, emotion models.Emotion, who Requester, now time.Time) (int, error) {
	if !emotion.Valid() {
		return 0, ErrInvalidEmotion
	}

	day, hour := models.Partition(now)
	vote := models.VoteRecord{
		ID:           uuid.NewString(),
		IdentityHash: identity.Derive(who.IP, who.UserAgent, day, vs.secret),
		Day:          day,
		Hour:         hour,
		Emotion:      emotion,
	}

	err := db.RunTx(ctx, vs.store.DB(), func(tx *sql.Tx) error {
		if err := vs.store.InsertVote(ctx, tx, vote); err != nil {
			return err
		}
		return vs.store.Increment(ctx, tx, day, hour, emotion, 1)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateVote) {
			vs.metrics.VotesDuplicate.Inc()
			slog.Info("duplicate vote rejected", "day", day, "hour", hour)
		} else {
			vs.metrics.VoteFailures.Inc()
			slog.Error("vote transaction failed", "day", day, "hour", hour, "error", err)
		}
		return 0, ErrAlreadyVoted
	}

	vs.metrics.VotesRecorded.WithLabelValues(string(emotion)).Inc()
	if vs.inv != nil {
		vs.inv.Invalidate(context.WithoutCancel(ctx), day)
	}

	slog.Info("vote recorded", "day", day, "hour", hour, "emotion", emotion)
	return hour, nil
}

// TodaysVote returns the caller's vote for the current UTC day, or nil.
func (vs *VoteService) TodaysVote(ctx context.Context, who Requester, now time.Time) (*models.Emotion, error) {
	day, _ := models.Partition(now)
	token := identity.Derive(who.IP, who.UserAgent, day, vs.secret)

	e, err := vs.store.VoteFor(ctx, token, day)
	if err != nil {
		return nil, fmt.Errorf("lookup today's vote: %w", err)
	}
	return e, nil
}
