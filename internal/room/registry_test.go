// internal/room/registry_test.go
package room

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanivhq/yaniv-service/internal/models"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry(testLogger())
	t.Cleanup(reg.Close)
	return reg
}

func TestCreateRoomCodes(t *testing.T) {
	reg := newTestRegistry(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		r, err := reg.CreateRoom(models.DefaultRoomSettings(), testLogger())
		require.NoError(t, err)
		require.Len(t, r.Code, codeLength)
		for _, ch := range r.Code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "code %q uses only the unambiguous alphabet", r.Code)
		}
		assert.False(t, seen[r.Code], "codes must not collide")
		seen[r.Code] = true
	}
	assert.Equal(t, 20, reg.Count())
}

func TestCreateRoomRejectsBadSettings(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.CreateRoom(models.RoomSettings{ScoreLimit: 42}, testLogger())
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Count())
}

func TestGetRoom(t *testing.T) {
	reg := newTestRegistry(t)
	r, err := reg.CreateRoom(models.DefaultRoomSettings(), testLogger())
	require.NoError(t, err)

	got, ok := reg.GetRoom(r.Code)
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = reg.GetRoom("NOSUCH")
	assert.False(t, ok)
}

func TestClosedRoomLeavesRegistry(t *testing.T) {
	reg := newTestRegistry(t)
	r, err := reg.CreateRoom(models.DefaultRoomSettings(), testLogger())
	require.NoError(t, err)

	r.Shutdown("test")
	_, ok := reg.GetRoom(r.Code)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Count())
}

func TestSweepClosesIdleAndEmptyRooms(t *testing.T) {
	reg := newTestRegistry(t)

	empty, err := reg.CreateRoom(models.DefaultRoomSettings(), testLogger())
	require.NoError(t, err)

	active, err := reg.CreateRoom(models.DefaultRoomSettings(), testLogger())
	require.NoError(t, err)
	require.NoError(t, active.AddPlayer(uuid.New(), "ana", "", false))

	stale, err := reg.CreateRoom(models.DefaultRoomSettings(), testLogger())
	require.NoError(t, err)
	require.NoError(t, stale.AddPlayer(uuid.New(), "ben", "", false))
	stale.Mu.Lock()
	stale.LastActivity = time.Now().Add(-time.Hour)
	stale.Mu.Unlock()

	reg.sweep(time.Now())

	_, ok := reg.GetRoom(empty.Code)
	assert.False(t, ok, "empty room is swept")
	_, ok = reg.GetRoom(stale.Code)
	assert.False(t, ok, "idle room is swept")
	_, ok = reg.GetRoom(active.Code)
	assert.True(t, ok, "active room survives")
}
