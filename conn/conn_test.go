package conn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsInReadingRequestState(t *testing.T) {
	c := New(7, 8080)
	assert.Equal(t, StateReadingRequest, c.State)
	assert.Equal(t, 7, c.FD)
	assert.Equal(t, uint16(8080), c.Port)
	assert.NotEmpty(t, c.ID)
	require.NotNil(t, c.Parser)
}

func TestTouchUpdatesLastActivity(t *testing.T) {
	c := New(1, 80)
	c.LastActivity = time.Now().Add(-time.Hour)
	c.Touch()
	assert.WithinDuration(t, time.Now(), c.LastActivity, time.Second)
}

func TestIdleReportsTrueAfterTimeout(t *testing.T) {
	c := New(1, 80)
	c.LastActivity = time.Now().Add(-2 * time.Second)
	assert.True(t, c.Idle(time.Second))
	assert.False(t, c.Idle(time.Hour))
}

func TestQueueResponseTransitionsToSendingResponse(t *testing.T) {
	c := New(1, 80)
	c.QueueResponse([]byte("hello"), false)
	assert.Equal(t, StateSendingResponse, c.State)
	assert.True(t, c.Pending())
	assert.Equal(t, []byte("hello"), c.Remaining())
	assert.False(t, c.StopAfterWrite)
}

func TestQueueResponseRecordsStopAfterWrite(t *testing.T) {
	c := New(1, 80)
	c.QueueResponse([]byte("bye"), true)
	assert.True(t, c.StopAfterWrite)
}

func TestAdvanceDrainsWriteBuffer(t *testing.T) {
	c := New(1, 80)
	c.QueueResponse([]byte("hello"), false)
	c.Advance(3)
	assert.True(t, c.Pending())
	assert.Equal(t, []byte("lo"), c.Remaining())
	c.Advance(2)
	assert.False(t, c.Pending())
}

func TestEachConnGetsUniqueID(t *testing.T) {
	a := New(1, 80)
	b := New(2, 80)
	assert.NotEqual(t, a.ID, b.ID)
}
