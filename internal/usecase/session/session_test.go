package usecase_session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmmjam/taptap/internal/infra/membership"
	"github.com/bmmjam/taptap/internal/infra/resultmem"
	"github.com/bmmjam/taptap/internal/infra/roomfile"
	"github.com/bmmjam/taptap/internal/model"
	usecase_room "github.com/bmmjam/taptap/internal/usecase/room"
)

const (
	creatorID = model.UserID(42)
	botDomain = "t.me/taptap_mood_bot"
)

type notifications struct {
	calls []model.Summary
}

func (n *notifications) SummaryChanged(_ model.RoomCode, s model.Summary) {
	n.calls = append(n.calls, s)
}

type fixture struct {
	session     *Usecase
	memberships *membership.Index
	notifier    *notifications
	ctx         context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := roomfile.New(filepath.Join(t.TempDir(), "rooms.json"))
	require.NoError(t, err)

	memberships := membership.New()
	notifier := &notifications{}
	session := New(
		usecase_room.New(repo),
		memberships,
		resultmem.New(),
		botDomain,
		WithNotifier(notifier),
	)

	return &fixture{
		session:     session,
		memberships: memberships,
		notifier:    notifier,
		ctx:         context.Background(),
	}
}

func (f *fixture) createRoom(t *testing.T) model.RoomCode {
	t.Helper()
	code, _, err := f.session.CreateRoom(f.ctx, "Пятничные посиделки", creatorID)
	require.NoError(t, err)
	return code
}

func TestCreateRoomReturnsJoinLink(t *testing.T) {
	f := newFixture(t)

	code, link, err := f.session.CreateRoom(f.ctx, "Пятничные посиделки", creatorID)

	require.NoError(t, err)
	assert.Len(t, string(code), 6)
	assert.Equal(t, fmt.Sprintf("https://%s?start=r_%s", botDomain, code), link)
}

func TestCreateRoomRequiresName(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.session.CreateRoom(f.ctx, "", creatorID)

	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestJoinRoom(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)

	room, err := f.session.JoinRoom(f.ctx, 7, code)

	require.NoError(t, err)
	assert.Equal(t, "Пятничные посиделки", room.Name)

	current, ok := f.memberships.CurrentRoom(7)
	assert.True(t, ok)
	assert.Equal(t, code, current)
}

func TestJoinUnknownRoomLeavesMembershipUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.JoinRoom(f.ctx, 7, "zzzzzz")

	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, ok := f.memberships.CurrentRoom(7)
	assert.False(t, ok)
}

func TestSubmitResultRequiresMembership(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t)

	_, err := f.session.SubmitResult(f.ctx, 7, "alice", model.EmotionCalm, nil)

	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestSubmitResultUsesCurrentRoom(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)
	_, err := f.session.JoinRoom(f.ctx, 7, code)
	require.NoError(t, err)

	members, err := f.session.SubmitResult(f.ctx, 7, "alice", model.EmotionExcited, model.Stats{"taps": 17})

	require.NoError(t, err)
	assert.Equal(t, 1, members)

	results, err := f.session.Members(f.ctx, code)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].DisplayName)
	assert.Equal(t, model.Stats{"taps": 17}, results[0].Stats)
}

func TestResubmissionOverwritesWithoutDoubleCounting(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)

	_, err := f.session.SubmitResultForRoom(f.ctx, code, 7, "alice", model.EmotionCalm, nil)
	require.NoError(t, err)
	members, err := f.session.SubmitResultForRoom(f.ctx, code, 7, "alice", model.EmotionSad, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, members)

	sum, err := f.session.GetSummary(f.ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, model.EmotionSad, sum.Dominant)
	assert.Zero(t, sum.Counts[model.EmotionCalm])
}

func TestSubmitForUnknownRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.SubmitResultForRoom(f.ctx, "zzzzzz", 7, "alice", model.EmotionCalm, nil)

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSubmitRequiresEmotion(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)

	_, err := f.session.SubmitResultForRoom(f.ctx, code, 7, "alice", "", nil)

	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestGetSummaryAggregatesRoom(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)

	_, err := f.session.SubmitResultForRoom(f.ctx, code, 1, "alice", model.EmotionExcited, nil)
	require.NoError(t, err)
	_, err = f.session.SubmitResultForRoom(f.ctx, code, 2, "bob", model.EmotionExcited, nil)
	require.NoError(t, err)
	_, err = f.session.SubmitResultForRoom(f.ctx, code, 3, "carol", model.EmotionCalm, nil)
	require.NoError(t, err)

	sum, err := f.session.GetSummary(f.ctx, code)

	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, model.EmotionExcited, sum.Dominant)
	assert.Equal(t, 2, sum.Counts[model.EmotionExcited])
	assert.Equal(t, 1, sum.Counts[model.EmotionCalm])
}

func TestGetSummaryUnknownRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.GetSummary(f.ctx, "zzzzzz")

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestResetRoom(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)
	_, err := f.session.JoinRoom(f.ctx, 7, code)
	require.NoError(t, err)
	_, err = f.session.SubmitResultForRoom(f.ctx, code, 7, "alice", model.EmotionCalm, nil)
	require.NoError(t, err)

	t.Run("non-creator is rejected and results survive", func(t *testing.T) {
		err := f.session.ResetRoom(f.ctx, code, 7)
		assert.ErrorIs(t, err, ErrNotCreator)

		sum, err := f.session.GetSummary(f.ctx, code)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Total)
	})

	t.Run("creator clears results, room and membership stay", func(t *testing.T) {
		require.NoError(t, f.session.ResetRoom(f.ctx, code, creatorID))

		sum, err := f.session.GetSummary(f.ctx, code)
		require.NoError(t, err)
		assert.Equal(t, 0, sum.Total)

		_, err = f.session.JoinRoom(f.ctx, 8, code)
		assert.NoError(t, err)

		current, ok := f.memberships.CurrentRoom(7)
		assert.True(t, ok)
		assert.Equal(t, code, current)
	})

	t.Run("unknown room", func(t *testing.T) {
		err := f.session.ResetRoom(f.ctx, "zzzzzz", creatorID)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestNotifierSeesEveryMutation(t *testing.T) {
	f := newFixture(t)
	code := f.createRoom(t)

	_, err := f.session.SubmitResultForRoom(f.ctx, code, 7, "alice", model.EmotionCalm, nil)
	require.NoError(t, err)
	require.NoError(t, f.session.ResetRoom(f.ctx, code, creatorID))

	require.Len(t, f.notifier.calls, 2)
	assert.Equal(t, 1, f.notifier.calls[0].Total)
	assert.Equal(t, 0, f.notifier.calls[1].Total)
}
