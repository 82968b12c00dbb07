package memorystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "working:abc", workingKey("abc"))
	assert.Equal(t, "conversation_summary:abc", summaryKey("abc"))
	assert.Equal(t, "daily:abc", dailyKey("abc"))
	assert.Equal(t, "core:abc", coreKey("abc"))
	assert.Equal(t, "pending:abc", pendingKey("abc"))
	assert.Equal(t, "active_project:abc", activeProjectKey("abc"))
}

func TestLockNameSerialisesSameKey(t *testing.T) {
	s := &Store{}
	unlock := s.LockName("ahmed")
	done := make(chan struct{})
	go func() {
		unlock2 := s.LockName("ahmed")
		unlock2()
		close(done)
	}()
	unlock()
	<-done
}
