package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetSession(t *testing.T) {
	m := NewManager()
	sess := m.CreateSession("u1", time.Minute)
	require.NotEmpty(t, sess.ID)

	got, ok := m.GetSession(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 1, m.ActiveCount())
}

func TestExpiredSessionIsEvictedOnGet(t *testing.T) {
	m := NewManager()
	sess := m.CreateSession("u1", -time.Second)

	_, ok := m.GetSession(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.ActiveCount())
}

func TestTouchExtendsExpiry(t *testing.T) {
	m := NewManager()
	sess := m.CreateSession("u1", 10*time.Millisecond)

	require.True(t, m.Touch(sess.ID, time.Hour))
	time.Sleep(20 * time.Millisecond)

	_, ok := m.GetSession(sess.ID)
	assert.True(t, ok)
}

func TestTouchRefusesExpiredOrUnknown(t *testing.T) {
	m := NewManager()
	expired := m.CreateSession("u1", -time.Second)

	assert.False(t, m.Touch(expired.ID, time.Hour))
	assert.False(t, m.Touch("no-such-session", time.Hour))
}

func TestCleanupExpiredSessions(t *testing.T) {
	m := NewManager()
	m.CreateSession("gone", -time.Second)
	live := m.CreateSession("live", time.Hour)

	m.CleanupExpiredSessions()

	assert.Equal(t, 1, m.ActiveCount())
	_, ok := m.GetSession(live.ID)
	assert.True(t, ok)
}

func TestDeleteSession(t *testing.T) {
	m := NewManager()
	sess := m.CreateSession("u1", time.Hour)
	m.DeleteSession(sess.ID)

	_, ok := m.GetSession(sess.ID)
	assert.False(t, ok)
}
