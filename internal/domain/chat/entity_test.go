package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Cooldown:    30 * time.Second,
		MinLength:   5,
		BatchSize:   3,
		GrantAmount: 10,
	}
}

func TestObserve_FirstMessageAccepted(t *testing.T) {
	s := NewState("member-1")

	res := s.Observe("hello there", base, testConfig())

	assert.True(t, res.Accepted)
	assert.Equal(t, RejectNone, res.Reason)
	assert.Equal(t, 1, res.MessageCount)
	assert.False(t, res.BatchCompleted)
	assert.Equal(t, base, s.LastMessageAt)
	assert.Equal(t, "hello there", s.LastContent)
}

func TestObserve_CooldownRejects(t *testing.T) {
	s := NewState("member-1")
	cfg := testConfig()

	s.Observe("first message", base, cfg)
	res := s.Observe("second message", base.Add(10*time.Second), cfg)

	assert.False(t, res.Accepted)
	assert.Equal(t, RejectCooldown, res.Reason)
	assert.Equal(t, 1, res.MessageCount)
	// Rejected message must not disturb the recorded state.
	assert.Equal(t, base, s.LastMessageAt)
	assert.Equal(t, "first message", s.LastContent)
}

func TestObserve_CooldownBoundaryAccepts(t *testing.T) {
	s := NewState("member-1")
	cfg := testConfig()

	s.Observe("first message", base, cfg)
	res := s.Observe("second message", base.Add(cfg.Cooldown), cfg)

	assert.True(t, res.Accepted)
	assert.Equal(t, 2, res.MessageCount)
}

func TestObserve_DuplicateContentRejects(t *testing.T) {
	s := NewState("member-1")
	cfg := testConfig()

	s.Observe("same words", base, cfg)
	res := s.Observe("same words", base.Add(time.Minute), cfg)

	assert.False(t, res.Accepted)
	assert.Equal(t, RejectDuplicate, res.Reason)
	assert.Equal(t, 1, res.MessageCount)
}

func TestObserve_DuplicateAfterDifferentMessageAccepts(t *testing.T) {
	s := NewState("member-1")
	cfg := testConfig()

	s.Observe("same words", base, cfg)
	s.Observe("other words", base.Add(time.Minute), cfg)
	res := s.Observe("same words", base.Add(2*time.Minute), cfg)

	assert.True(t, res.Accepted)
	assert.Equal(t, 3, res.MessageCount)
}

func TestObserve_TooShortRejects(t *testing.T) {
	s := NewState("member-1")

	res := s.Observe("hey", base, testConfig())

	assert.False(t, res.Accepted)
	assert.Equal(t, RejectTooShort, res.Reason)
	assert.Equal(t, 0, res.MessageCount)
}

func TestObserve_LengthCountsRunesNotBytes(t *testing.T) {
	s := NewState("member-1")

	// Five runes, more than five bytes.
	res := s.Observe("сәлем", base, testConfig())

	assert.True(t, res.Accepted)
}

func TestObserve_CooldownCheckedBeforeLength(t *testing.T) {
	s := NewState("member-1")
	cfg := testConfig()

	s.Observe("first message", base, cfg)
	res := s.Observe("hi", base.Add(time.Second), cfg)

	assert.Equal(t, RejectCooldown, res.Reason)
}

func TestObserve_BatchCompletion(t *testing.T) {
	s := NewState("member-1")
	cfg := testConfig()

	at := base
	for i := 1; i <= cfg.BatchSize-1; i++ {
		res := s.Observe(fmt.Sprintf("message number %d", i), at, cfg)
		assert.True(t, res.Accepted)
		assert.False(t, res.BatchCompleted)
		at = at.Add(time.Minute)
	}

	res := s.Observe("the final batch message", at, cfg)
	assert.True(t, res.Accepted)
	assert.True(t, res.BatchCompleted)
	assert.Equal(t, cfg.BatchSize, res.MessageCount)

	// The counter keeps running into the next batch.
	res = s.Observe("and one more after", at.Add(time.Minute), cfg)
	assert.True(t, res.Accepted)
	assert.False(t, res.BatchCompleted)
	assert.Equal(t, cfg.BatchSize+1, res.MessageCount)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.Cooldown)
	assert.Equal(t, 5, cfg.MinLength)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, shared.XP(10), cfg.GrantAmount)
}
