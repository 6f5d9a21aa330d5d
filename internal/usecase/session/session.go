// Package usecase_session is the single entry point the transports talk
// to: room creation, joining, result submission, summaries and resets.
package usecase_session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmmjam/taptap/internal/model"
	"github.com/bmmjam/taptap/internal/summary"
	usecase_room "github.com/bmmjam/taptap/internal/usecase/room"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInRoom      = errors.New("not in a room")
	ErrNotCreator     = errors.New("not the room creator")
	ErrMalformedInput = errors.New("malformed input")
	ErrPersistence    = errors.New("persistence failure")
)

type MembershipIndex interface {
	Join(id model.UserID, code model.RoomCode)
	CurrentRoom(id model.UserID) (model.RoomCode, bool)
}

type ResultStore interface {
	Upsert(code model.RoomCode, r model.Result) int
	Snapshot(code model.RoomCode) []model.Result
	Clear(code model.RoomCode)
}

type AuditLog interface {
	Submission(code model.RoomCode, r model.Result) error
}

// SummaryNotifier receives the fresh summary after every mutation of a
// room's result set (submission or reset).
type SummaryNotifier interface {
	SummaryChanged(code model.RoomCode, s model.Summary)
}

type Usecase struct {
	rooms       *usecase_room.Usecase
	memberships MembershipIndex
	results     ResultStore

	botDomain string

	audit    AuditLog
	notifier SummaryNotifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Usecase)

func WithAuditLog(audit AuditLog) Option {
	return func(u *Usecase) {
		u.audit = audit
	}
}

func WithNotifier(n SummaryNotifier) Option {
	return func(u *Usecase) {
		u.notifier = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	rooms *usecase_room.Usecase,
	memberships MembershipIndex,
	results ResultStore,
	botDomain string,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		rooms:       rooms,
		memberships: memberships,
		results:     results,
		botDomain:   botDomain,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateRoom books a fresh code and returns it together with the deep
// link participants use to join through the chat client.
func (u *Usecase) CreateRoom(ctx context.Context, name string, creatorID model.UserID) (model.RoomCode, string, error) {
	if name == "" {
		return model.EmptyRoomCode, "", ErrMalformedInput
	}

	code, err := u.rooms.Create(ctx, name, creatorID)
	if err != nil {
		return model.EmptyRoomCode, "", errors.Join(ErrPersistence, err)
	}

	link := fmt.Sprintf("https://%s?start=r_%s", u.botDomain, code)
	u.logger.Info("room created", "room", code, "creator", creatorID)
	return code, link, nil
}

// JoinRoom records id's membership in code. An unknown code fails with
// ErrRoomNotFound and leaves the membership index untouched.
func (u *Usecase) JoinRoom(ctx context.Context, id model.UserID, code model.RoomCode) (model.Room, error) {
	room, err := u.rooms.Get(ctx, code)
	if err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, errors.Join(ErrPersistence, err)
	}

	u.memberships.Join(id, code)
	u.logger.Info("participant joined", "room", code, "user", id)
	return room, nil
}

// CurrentRoom exposes the caller's membership so room-scoped chat
// commands can resolve their target without mutating anything.
func (u *Usecase) CurrentRoom(_ context.Context, id model.UserID) (model.RoomCode, bool) {
	return u.memberships.CurrentRoom(id)
}

// SubmitResult is the chat-transport path: the room comes from the
// caller's current membership.
func (u *Usecase) SubmitResult(ctx context.Context, id model.UserID, displayName string, emotion model.Emotion, stats model.Stats) (int, error) {
	code, ok := u.memberships.CurrentRoom(id)
	if !ok {
		return 0, ErrNotInRoom
	}
	return u.SubmitResultForRoom(ctx, code, id, displayName, emotion, stats)
}

// SubmitResultForRoom is the explicit-room path used by the web client.
// Unknown emotion labels are accepted as-is; presentation falls back to
// generic styling for them.
func (u *Usecase) SubmitResultForRoom(ctx context.Context, code model.RoomCode, id model.UserID, displayName string, emotion model.Emotion, stats model.Stats) (int, error) {
	if emotion == "" {
		return 0, ErrMalformedInput
	}

	if _, err := u.rooms.Get(ctx, code); err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			return 0, ErrRoomNotFound
		}
		return 0, errors.Join(ErrPersistence, err)
	}

	result := model.Result{
		UserID:      id,
		DisplayName: displayName,
		Emotion:     emotion,
		Stats:       stats,
		SubmittedAt: u.now(),
	}
	members := u.results.Upsert(code, result)

	if u.audit != nil {
		if err := u.audit.Submission(code, result); err != nil {
			u.logger.Error("audit append failed", "room", code, "error", err)
		}
	}
	u.notifySummary(code)

	u.logger.Info("result submitted", "room", code, "user", id, "emotion", emotion, "members", members)
	return members, nil
}

func (u *Usecase) GetSummary(ctx context.Context, code model.RoomCode) (model.Summary, error) {
	if _, err := u.rooms.Get(ctx, code); err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			return model.Summary{}, ErrRoomNotFound
		}
		return model.Summary{}, errors.Join(ErrPersistence, err)
	}
	return summary.Summarize(u.results.Snapshot(code)), nil
}

// Members returns the room's results in first-submission order, which
// is the display order of the member list.
func (u *Usecase) Members(ctx context.Context, code model.RoomCode) ([]model.Result, error) {
	if _, err := u.rooms.Get(ctx, code); err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, errors.Join(ErrPersistence, err)
	}
	return u.results.Snapshot(code), nil
}

// ResetRoom wipes the room's results. Only the creator may reset; the
// room record and existing memberships survive.
func (u *Usecase) ResetRoom(ctx context.Context, code model.RoomCode, requesterID model.UserID) error {
	isCreator, err := u.rooms.IsCreator(ctx, code, requesterID)
	if err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			return ErrRoomNotFound
		}
		return errors.Join(ErrPersistence, err)
	}
	if !isCreator {
		return ErrNotCreator
	}

	u.results.Clear(code)
	u.notifySummary(code)

	u.logger.Info("room reset", "room", code, "by", requesterID)
	return nil
}

func (u *Usecase) notifySummary(code model.RoomCode) {
	if u.notifier == nil {
		return
	}
	u.notifier.SummaryChanged(code, summary.Summarize(u.results.Snapshot(code)))
}
