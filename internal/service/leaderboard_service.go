package service

import (
	"context"
	"sort"

	"contesthub/internal/model"
	"contesthub/internal/repository"
)

// LeaderboardService ranks users by winning submissions.
type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

type leaderboardService struct {
	contests repository.ContestRepository
	users    repository.UserRepository
}

// NewLeaderboardService builds the leaderboard. It holds no state and is recomputed
// on every call.
func NewLeaderboardService(contests repository.ContestRepository, users repository.UserRepository) LeaderboardService {
	return &leaderboardService{contests: contests, users: users}
}

func (s *leaderboardService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	counts, err := s.contests.WinCounts(ctx)
	if err != nil {
		return nil, storeFailure("aggregate wins", err)
	}

	emails := make([]string, len(counts))
	for i, c := range counts {
		emails[i] = c.Email
	}
	users, err := s.users.FindByEmails(ctx, emails)
	if err != nil {
		return nil, storeFailure("load winners", err)
	}
	byEmail := make(map[string]model.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}

	entries := make([]model.LeaderboardEntry, 0, len(counts))
	for _, c := range counts {
		entry := model.LeaderboardEntry{Email: c.Email, Points: c.Points}
		if u, ok := byEmail[c.Email]; ok {
			entry.Name = u.Name
			entry.Photo = u.Photo
			entry.Role = u.Role
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Email < entries[j].Email
	})
	return entries, nil
}
