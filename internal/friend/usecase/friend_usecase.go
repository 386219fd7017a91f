package usecase

import (
	"errors"

	authrepo "cafely-backend/internal/auth/repository"
	frienddomain "cafely-backend/internal/friend/domain"
	"cafely-backend/internal/friend/repository"
)

var (
	ErrSelfRequest     = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrAlreadyPending  = errors.New("friend request already pending")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrNotAddressee    = errors.New("only the addressee can accept a request")
	ErrUserNotFound    = errors.New("user not found")
)

// FriendUsecase is the application boundary for the friend graph
type FriendUsecase interface {
	SendRequest(requesterID, targetID string) (*frienddomain.Friendship, error)
	AcceptRequest(userID, friendshipID string) (*frienddomain.Friendship, error)
	DeclineRequest(userID, friendshipID string) error
	RemoveFriend(userID, friendID string) error
	Friends(userID string) ([]frienddomain.Friendship, error)
	PendingRequests(userID string) ([]frienddomain.Friendship, error)
	AcceptedFriendIDs(userID string) ([]string, error)

	SetChangeCallback(fn func(userIDs ...string))
}

type friendUsecase struct {
	friendRepo repository.FriendshipRepository
	userRepo   authrepo.UserRepository

	// Invoked after graph changes so live conversation snapshots refresh;
	// wired at startup, same pattern as the auth → email sync callback.
	onChange func(userIDs ...string)
}

// NewFriendUsecase creates a new instance of friendUsecase
func NewFriendUsecase(friendRepo repository.FriendshipRepository, userRepo authrepo.UserRepository) FriendUsecase {
	return &friendUsecase{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (u *friendUsecase) SetChangeCallback(fn func(userIDs ...string)) {
	u.onChange = fn
}

func (u *friendUsecase) notifyChange(userIDs ...string) {
	if u.onChange != nil {
		u.onChange(userIDs...)
	}
}

func (u *friendUsecase) SendRequest(requesterID, targetID string) (*frienddomain.Friendship, error) {
	if requesterID == targetID {
		return nil, ErrSelfRequest
	}

	target, err := u.userRepo.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := u.friendRepo.FindByPair(requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == frienddomain.StatusAccepted {
			return nil, ErrAlreadyFriends
		}
		return nil, ErrAlreadyPending
	}

	friendship := &frienddomain.Friendship{
		User1ID:     requesterID,
		User2ID:     targetID,
		Status:      frienddomain.StatusPending,
		RequestedBy: requesterID,
	}
	if err := u.friendRepo.Create(friendship); err != nil {
		return nil, err
	}

	return friendship, nil
}

func (u *friendUsecase) AcceptRequest(userID, friendshipID string) (*frienddomain.Friendship, error) {
	friendship, err := u.friendRepo.FindByID(friendshipID)
	if err != nil {
		return nil, err
	}
	if friendship == nil || !friendship.Involves(userID) {
		return nil, ErrRequestNotFound
	}
	if friendship.RequestedBy == userID {
		return nil, ErrNotAddressee
	}
	if friendship.Status == frienddomain.StatusAccepted {
		// Accepting twice is a no-op; the repository is only asked to
		// transition pending records, so no duplicate event is written.
		return friendship, nil
	}

	if err := u.friendRepo.Accept(friendship); err != nil {
		return nil, err
	}

	u.notifyChange(friendship.User1ID, friendship.User2ID)
	return friendship, nil
}

func (u *friendUsecase) DeclineRequest(userID, friendshipID string) error {
	friendship, err := u.friendRepo.FindByID(friendshipID)
	if err != nil {
		return err
	}
	if friendship == nil || !friendship.Involves(userID) {
		return ErrRequestNotFound
	}

	return u.friendRepo.Delete(friendship.ID)
}

func (u *friendUsecase) RemoveFriend(userID, friendID string) error {
	friendship, err := u.friendRepo.FindByPair(userID, friendID)
	if err != nil {
		return err
	}
	if friendship == nil {
		return ErrRequestNotFound
	}

	if err := u.friendRepo.Delete(friendship.ID); err != nil {
		return err
	}

	// Historical messages stay; the conversation just stops surfacing
	u.notifyChange(friendship.User1ID, friendship.User2ID)
	return nil
}

func (u *friendUsecase) Friends(userID string) ([]frienddomain.Friendship, error) {
	return u.friendRepo.ListAcceptedFor(userID)
}

func (u *friendUsecase) PendingRequests(userID string) ([]frienddomain.Friendship, error) {
	return u.friendRepo.ListPendingFor(userID)
}

// AcceptedFriendIDs returns just the peer ids, for the conversation projection
func (u *friendUsecase) AcceptedFriendIDs(userID string) ([]string, error) {
	friendships, err := u.friendRepo.ListAcceptedFor(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.OtherUser(userID))
	}
	return ids, nil
}
