// Package roomfile is the durable room table: a single JSON file keyed
// by room code, read once at startup and rewritten wholesale after
// every creation. A missing file is an empty registry, not an error.
package roomfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmmjam/taptap/internal/model"
	usecase_room "github.com/bmmjam/taptap/internal/usecase/room"
)

type roomDTO struct {
	Name      string    `json:"name"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	path string

	mu    sync.Mutex
	rooms map[model.RoomCode]model.Room
}

func New(path string) (*Store, error) {
	s := &Store{
		path:  path,
		rooms: make(map[model.RoomCode]model.Room),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load room table: %w", err)
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	table := make(map[model.RoomCode]roomDTO)
	if err := json.Unmarshal(raw, &table); err != nil {
		return err
	}
	for code, dto := range table {
		s.rooms[code] = model.Room{
			Code:      code,
			Name:      dto.Name,
			CreatorID: model.UserID(dto.CreatorID),
			CreatedAt: dto.CreatedAt,
		}
	}
	return nil
}

// Create inserts the room and rewrites the table on disk. A duplicate
// code reports usecase_room.ErrCodeConflict so the caller can redraw;
// a failed write rolls the insertion back and reports the write error.
func (s *Store) Create(_ context.Context, room model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.Code]; exists {
		return usecase_room.ErrCodeConflict
	}
	s.rooms[room.Code] = room

	if err := s.persist(); err != nil {
		delete(s.rooms, room.Code)
		return err
	}
	return nil
}

func (s *Store) Get(_ context.Context, code model.RoomCode) (model.Room, error) {
	s.mu.Lock()
	room, ok := s.rooms[code]
	s.mu.Unlock()
	if !ok {
		return model.Room{}, usecase_room.ErrResourceNotFound
	}
	return room, nil
}

// persist writes the whole table to a sibling temp file and renames it
// over the target, so a crash mid-write never leaves a torn table.
// Callers hold s.mu.
func (s *Store) persist() error {
	table := make(map[model.RoomCode]roomDTO, len(s.rooms))
	for code, room := range s.rooms {
		table[code] = roomDTO{
			Name:      room.Name,
			CreatorID: int64(room.CreatorID),
			CreatedAt: room.CreatedAt,
		}
	}

	raw, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
