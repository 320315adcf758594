package services

import (
	"context"
	"errors"
	"time"

	"hue-chat/internal/domain/friend"
	"hue-chat/internal/repository"
	hue_errors "hue-chat/pkg/errors"

	"gorm.io/gorm"
)

type FriendService struct {
	db         *gorm.DB
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

func NewFriendService(db *gorm.DB, friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		db:         db,
		friendRepo: friendRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

type FriendInfo struct {
	FriendHex string    `json:"friend_hex"`
	Nickname  string    `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RequestInfo struct {
	ID        int64     `json:"id"`
	FromHex   string    `json:"from_hex"`
	CreatedAt time.Time `json:"created_at"`
}

// SendRequest creates a pending request from one user to another. Sending a
// duplicate pending request is a silent no-op.
func (s *FriendService) SendRequest(ctx context.Context, fromHex, toHex string) error {
	toHex = CanonicalHex(toHex)
	if fromHex == toHex {
		return hue_errors.ErrSelfRequest
	}

	if _, err := s.userRepo.GetByHex(ctx, toHex); err != nil {
		return err
	}

	exists, err := s.friendRepo.FriendshipExists(ctx, fromHex, toHex)
	if err != nil {
		return err
	}
	if exists {
		return hue_errors.ErrAlreadyFriends
	}

	return s.friendRepo.CreateRequest(ctx, &friend.Request{
		FromHex:   fromHex,
		ToHex:     toHex,
		Status:    friend.StatusPending,
		CreatedAt: s.now(),
	})
}

// Accept creates both directions of the friendship and flips the request in
// one transaction. Re-running accept on an already accepted request is a
// success no-op, so a crash between the two writes cannot strand state.
func (s *FriendService) Accept(ctx context.Context, requestID int64, byUser string) error {
	req, err := s.friendRepo.GetPendingRequest(ctx, requestID, byUser)
	if err != nil {
		if !errors.Is(err, hue_errors.ErrNotFound) {
			return err
		}
		// Idempotent re-run: an accepted request addressed to this user is fine.
		prev, prevErr := s.friendRepo.GetRequest(ctx, requestID)
		if prevErr == nil && prev.ToHex == byUser && prev.Status == friend.StatusAccepted {
			return nil
		}
		return hue_errors.ErrNotFound
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		friendRepo := repository.NewFriendRepository(tx)

		if err := friendRepo.CreateFriendship(ctx, &friend.Friendship{
			UserHex:   req.FromHex,
			FriendHex: req.ToHex,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := friendRepo.CreateFriendship(ctx, &friend.Friendship{
			UserHex:   req.ToHex,
			FriendHex: req.FromHex,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return friendRepo.UpdateRequestStatus(ctx, requestID, friend.StatusAccepted)
	})
}

// Reject flips a pending request to rejected. No edge is created.
func (s *FriendService) Reject(ctx context.Context, requestID int64, byUser string) error {
	if _, err := s.friendRepo.GetPendingRequest(ctx, requestID, byUser); err != nil {
		return err
	}
	return s.friendRepo.UpdateRequestStatus(ctx, requestID, friend.StatusRejected)
}

// Remove deletes both directions of the edge. Removing a friendship that is
// already gone succeeds.
func (s *FriendService) Remove(ctx context.Context, userHex, friendHex string) error {
	return s.friendRepo.DeletePair(ctx, userHex, CanonicalHex(friendHex))
}

// SetNickname renames the friend as seen by the owner only; the reverse
// direction keeps its own nickname.
func (s *FriendService) SetNickname(ctx context.Context, ownerHex, friendHex, nickname string) error {
	return s.friendRepo.SetNickname(ctx, ownerHex, CanonicalHex(friendHex), nickname)
}

// ListFriends returns the owner's friends ordered by nickname then identity.
func (s *FriendService) ListFriends(ctx context.Context, ownerHex string) ([]FriendInfo, error) {
	friends, err := s.friendRepo.ListFriends(ctx, ownerHex)
	if err != nil {
		return nil, err
	}

	result := make([]FriendInfo, 0, len(friends))
	for _, f := range friends {
		result = append(result, FriendInfo{
			FriendHex: f.FriendHex,
			Nickname:  f.Nickname,
			CreatedAt: f.CreatedAt,
		})
	}
	return result, nil
}

// PendingRequests returns requests awaiting the user's decision, newest
// first.
func (s *FriendService) PendingRequests(ctx context.Context, userHex string) ([]RequestInfo, error) {
	requests, err := s.friendRepo.PendingRequestsFor(ctx, userHex)
	if err != nil {
		return nil, err
	}

	result := make([]RequestInfo, 0, len(requests))
	for _, r := range requests {
		result = append(result, RequestInfo{
			ID:        r.ID,
			FromHex:   r.FromHex,
			CreatedAt: r.CreatedAt,
		})
	}
	return result, nil
}
