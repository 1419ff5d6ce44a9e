package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, ev Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestFormatUserCreated(t *testing.T) {
	ev := Event{
		Type:       TypeUserCreated,
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Data:       UserCreated{UserID: 7, Email: "jane@example.com", Role: "user"},
	}
	line, err := FormatEvent(marshal(t, ev))
	require.NoError(t, err)
	assert.Equal(t, `[2025-03-01T12:00:00Z] User created | user_id=7 | email="jane@example.com" | role=user`, line)
}

func TestFormatWaitlistSubmitted(t *testing.T) {
	ev := NewEvent(TypeWaitlistSubmitted, WaitlistSubmitted{
		Name:              "Jane Doe",
		Email:             "jane@example.com",
		CurrentRole:       "software-engineer",
		ExperienceLevel:   "4-6",
		PreferredFeatures: []string{"Smart Job Matching"},
	})
	line, err := FormatEvent(marshal(t, ev))
	require.NoError(t, err)
	assert.Contains(t, line, "Waitlist submitted")
	assert.Contains(t, line, `name="Jane Doe"`)
	assert.Contains(t, line, "features=[Smart Job Matching]")
}

func TestFormatUnknownTypeKeepsPayload(t *testing.T) {
	line, err := FormatEvent([]byte(`{"type":"other","occurred_at":"2025-01-01T00:00:00Z","data":{"a":1}}`))
	require.NoError(t, err)
	assert.Equal(t, `[2025-01-01T00:00:00Z] other | data={"a":1}`, line)
}

func TestFormatRejectsGarbage(t *testing.T) {
	_, err := FormatEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = FormatEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)
}

func TestAppendEventCreatesDirAndAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	body := marshal(t, NewEvent(TypeSessionCreated, SessionCreated{SessionID: 1, UserID: 2, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, AppendEvent(dir, body))
	require.NoError(t, AppendEvent(dir, body))

	b, err := os.ReadFile(filepath.Join(dir, EventLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Session created | session_id=1 | user_id=2")
}

func TestDiscardPublisher(t *testing.T) {
	var p Publisher = Discard{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(TypeUserCreated, nil)))
}
