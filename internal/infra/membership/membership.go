// Package membership maps a participant to their current room. Purely
// in-memory: the index starts empty after a restart and participants
// re-establish it by rejoining, which is the accepted trade-off.
package membership

import (
	"sync"

	"github.com/bmmjam/taptap/internal/model"
)

type Index struct {
	mu      sync.RWMutex
	current map[model.UserID]model.RoomCode
}

func New() *Index {
	return &Index{current: make(map[model.UserID]model.RoomCode)}
}

// Join points id at code, silently superseding any previous room.
// Last join wins; there is no explicit leave.
func (i *Index) Join(id model.UserID, code model.RoomCode) {
	i.mu.Lock()
	i.current[id] = code
	i.mu.Unlock()
}

func (i *Index) CurrentRoom(id model.UserID) (model.RoomCode, bool) {
	i.mu.RLock()
	code, ok := i.current[id]
	i.mu.RUnlock()
	return code, ok
}
