package usecase_room

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/bmmjam/taptap/internal/model"
)

var (
	ErrCodeConflict     = errors.New("code conflict")
	ErrRoomsUnavailable = errors.New("no available room codes")
	ErrResourceNotFound = errors.New("no such resource")
	ErrInternal         = errors.New("internal error")
)

//go:generate mockery --name=RoomRepository --output=./mocks --filename=repository.go
type RoomRepository interface {
	Create(ctx context.Context, room model.Room) error
	Get(ctx context.Context, code model.RoomCode) (model.Room, error)
}

const (
	codeLen      = 6
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeRetries  = 3
)

type Usecase struct {
	repo RoomRepository

	codeSource func() model.RoomCode
	now        func() time.Time
}

type Option func(*Usecase)

// WithCodeSource overrides the room-code generator, used by tests to
// force collisions.
func WithCodeSource(src func() model.RoomCode) Option {
	return func(u *Usecase) {
		u.codeSource = src
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(repo RoomRepository, opts ...Option) *Usecase {
	u := &Usecase{
		repo:       repo,
		codeSource: buildRoomCode,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create stores a new room under a freshly drawn code and returns it.
// A collision with an existing code is checked, not assumed away:
// the draw is retried until the repository accepts it.
func (u *Usecase) Create(ctx context.Context, name string, creatorID model.UserID) (model.RoomCode, error) {
	var retries = codeRetries
	for retries > 0 {
		code := u.codeSource()
		err := u.repo.Create(ctx, model.Room{
			Code:      code,
			Name:      name,
			CreatorID: creatorID,
			CreatedAt: u.now(),
		})
		if err != nil {
			if errors.Is(err, ErrCodeConflict) {
				retries--
				continue
			}
			return model.EmptyRoomCode, errors.Join(ErrInternal, err)
		}
		return code, nil
	}
	return model.EmptyRoomCode, ErrRoomsUnavailable
}

func (u *Usecase) Get(ctx context.Context, code model.RoomCode) (model.Room, error) {
	room, err := u.repo.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.Room{}, ErrResourceNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}

func (u *Usecase) IsCreator(ctx context.Context, code model.RoomCode, id model.UserID) (bool, error) {
	room, err := u.Get(ctx, code)
	if err != nil {
		return false, err
	}
	return room.CreatorID == id, nil
}

func buildRoomCode() model.RoomCode {
	var builder strings.Builder
	builder.Grow(codeLen)

	for range codeLen {
		builder.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}

	return model.RoomCode(builder.String())
}
