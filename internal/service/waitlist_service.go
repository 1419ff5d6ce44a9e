package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/StoryBuilderAi/storybuilder/internal/queue"
	"github.com/StoryBuilderAi/storybuilder/internal/waitlist"
)

// WaitlistService accepts completed waitlist forms. A submission is only
// published as an event; no account is created for it.
type WaitlistService struct {
	events queue.Publisher
	log    zerolog.Logger
}

func NewWaitlistService(events queue.Publisher, log zerolog.Logger) *WaitlistService {
	return &WaitlistService{events: events, log: log.With().Str("component", "waitlist").Logger()}
}

// Steps returns the form definition clients render.
func (s *WaitlistService) Steps() []waitlist.Step { return waitlist.Steps() }

// Submit replays sub through the form and publishes the final state.
// Invalid submissions come back as a *ValidationError.
func (s *WaitlistService) Submit(ctx context.Context, sub waitlist.Submission) (waitlist.State, error) {
	var final waitlist.State
	err := waitlist.Replay(sub, func(st waitlist.State) { final = st })
	var inv *waitlist.InvalidSubmissionError
	if errors.As(err, &inv) {
		return waitlist.State{}, invalid("Waitlist validation failed", inv.Problems...)
	}
	if err != nil {
		return waitlist.State{}, err
	}

	s.log.Info().Str("email", final.Email).Str("role", final.CurrentRole).Msg("waitlist form submitted")

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	ev := queue.NewEvent(queue.TypeWaitlistSubmitted, queue.WaitlistSubmitted{
		Name:              final.Name,
		Email:             final.Email,
		CurrentRole:       final.CurrentRole,
		ExperienceLevel:   final.ExperienceLevel,
		JobSearchPain:     final.JobSearchPain,
		ResumeChallenges:  final.ResumeChallenges,
		CareerGoals:       final.CareerGoals,
		PreferredFeatures: final.PreferredFeatures,
	})
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn().Err(err).Msg("waitlist event not published")
	}
	return final, nil
}
