package usecase

import (
	"testing"

	authdomain "cafely-backend/internal/auth/domain"
	frienddomain "cafely-backend/internal/friend/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFriendshipRepo struct {
	records map[string]*frienddomain.Friendship
	accepts int
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{records: make(map[string]*frienddomain.Friendship)}
}

func (f *fakeFriendshipRepo) Create(fs *frienddomain.Friendship) error {
	fs.ID = uuid.New().String()
	fs.User1ID, fs.User2ID = frienddomain.NormalizePair(fs.User1ID, fs.User2ID)
	f.records[fs.ID] = fs
	return nil
}

func (f *fakeFriendshipRepo) FindByID(id string) (*frienddomain.Friendship, error) {
	return f.records[id], nil
}

func (f *fakeFriendshipRepo) FindByPair(userA, userB string) (*frienddomain.Friendship, error) {
	u1, u2 := frienddomain.NormalizePair(userA, userB)
	for _, fs := range f.records {
		if fs.User1ID == u1 && fs.User2ID == u2 {
			return fs, nil
		}
	}
	return nil, nil
}

func (f *fakeFriendshipRepo) Accept(fs *frienddomain.Friendship) error {
	f.accepts++
	fs.Status = frienddomain.StatusAccepted
	f.records[fs.ID] = fs
	return nil
}

func (f *fakeFriendshipRepo) Delete(id string) error {
	delete(f.records, id)
	return nil
}

func (f *fakeFriendshipRepo) ListAcceptedFor(userID string) ([]frienddomain.Friendship, error) {
	var out []frienddomain.Friendship
	for _, fs := range f.records {
		if fs.Status == frienddomain.StatusAccepted && fs.Involves(userID) {
			out = append(out, *fs)
		}
	}
	return out, nil
}

func (f *fakeFriendshipRepo) ListPendingFor(userID string) ([]frienddomain.Friendship, error) {
	var out []frienddomain.Friendship
	for _, fs := range f.records {
		if fs.Status == frienddomain.StatusPending && fs.Involves(userID) && fs.RequestedBy != userID {
			out = append(out, *fs)
		}
	}
	return out, nil
}

type fakeUserLookupRepo struct {
	users map[string]*authdomain.User
}

func (f *fakeUserLookupRepo) Create(user *authdomain.User) error { return nil }
func (f *fakeUserLookupRepo) FindByEmail(string) (*authdomain.User, error) {
	return nil, nil
}
func (f *fakeUserLookupRepo) FindByUsername(string) (*authdomain.User, error) {
	return nil, nil
}
func (f *fakeUserLookupRepo) FindByID(id string) (*authdomain.User, error) {
	return f.users[id], nil
}
func (f *fakeUserLookupRepo) Update(*authdomain.User) error                 { return nil }
func (f *fakeUserLookupRepo) SetNotificationsEnabled(string, bool) error    { return nil }
func (f *fakeUserLookupRepo) SearchByUsername(string, int) ([]authdomain.User, error) {
	return nil, nil
}
func (f *fakeUserLookupRepo) SaveRefreshToken(*authdomain.RefreshToken) error { return nil }
func (f *fakeUserLookupRepo) FindRefreshToken(string) (*authdomain.RefreshToken, error) {
	return nil, nil
}
func (f *fakeUserLookupRepo) DeleteRefreshToken(string) error { return nil }

func newTestFriends(userIDs ...string) (FriendUsecase, *fakeFriendshipRepo) {
	users := make(map[string]*authdomain.User, len(userIDs))
	for _, id := range userIDs {
		users[id] = &authdomain.User{ID: id, Username: id}
	}
	repo := newFakeFriendshipRepo()
	return NewFriendUsecase(repo, &fakeUserLookupRepo{users: users}), repo
}

func TestSendRequestValidation(t *testing.T) {
	uc, _ := newTestFriends("alice", "bob")

	_, err := uc.SendRequest("alice", "alice")
	assert.ErrorIs(t, err, ErrSelfRequest)

	_, err = uc.SendRequest("alice", "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	fs, err := uc.SendRequest("alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, frienddomain.StatusPending, fs.Status)
	assert.Equal(t, "alice", fs.RequestedBy)

	_, err = uc.SendRequest("alice", "bob")
	assert.ErrorIs(t, err, ErrAlreadyPending)

	// The reverse direction hits the same canonical pair
	_, err = uc.SendRequest("bob", "alice")
	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestAcceptRequestOnlyAddressee(t *testing.T) {
	uc, _ := newTestFriends("alice", "bob", "carol")

	fs, err := uc.SendRequest("alice", "bob")
	require.NoError(t, err)

	_, err = uc.AcceptRequest("alice", fs.ID)
	assert.ErrorIs(t, err, ErrNotAddressee)

	_, err = uc.AcceptRequest("carol", fs.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	accepted, err := uc.AcceptRequest("bob", fs.ID)
	require.NoError(t, err)
	assert.Equal(t, frienddomain.StatusAccepted, accepted.Status)

	_, err = uc.SendRequest("alice", "bob")
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestAcceptRequestTwiceIsNoOp(t *testing.T) {
	uc, repo := newTestFriends("alice", "bob")

	fs, err := uc.SendRequest("alice", "bob")
	require.NoError(t, err)

	_, err = uc.AcceptRequest("bob", fs.ID)
	require.NoError(t, err)
	_, err = uc.AcceptRequest("bob", fs.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.accepts, "a second accept writes nothing")
}

func TestAcceptNotifiesBothUsers(t *testing.T) {
	uc, _ := newTestFriends("alice", "bob")

	var notified []string
	uc.SetChangeCallback(func(userIDs ...string) {
		notified = append(notified, userIDs...)
	})

	fs, err := uc.SendRequest("alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, notified, "a pending request does not reshape conversations")

	_, err = uc.AcceptRequest("bob", fs.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, notified)
}

func TestRemoveFriendHidesConversation(t *testing.T) {
	uc, _ := newTestFriends("alice", "bob")

	fs, err := uc.SendRequest("alice", "bob")
	require.NoError(t, err)
	_, err = uc.AcceptRequest("bob", fs.ID)
	require.NoError(t, err)

	ids, err := uc.AcceptedFriendIDs("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, ids)

	require.NoError(t, uc.RemoveFriend("alice", "bob"))

	ids, err = uc.AcceptedFriendIDs("alice")
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, uc.RemoveFriend("alice", "bob"), ErrRequestNotFound)
}

func TestPendingRequestsExcludeOwnOutgoing(t *testing.T) {
	uc, _ := newTestFriends("alice", "bob")

	_, err := uc.SendRequest("alice", "bob")
	require.NoError(t, err)

	incoming, err := uc.PendingRequests("bob")
	require.NoError(t, err)
	assert.Len(t, incoming, 1)

	outgoing, err := uc.PendingRequests("alice")
	require.NoError(t, err)
	assert.Empty(t, outgoing, "the requester is not shown their own request as incoming")
}
