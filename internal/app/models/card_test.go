package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardIsActive(t *testing.T) {
	now := time.Now()
	c := &ExperienceCard{Settings: DefaultCardSettings()}

	assert.True(t, c.IsActive(now))

	c.Settings.IsActive = false
	assert.False(t, c.IsActive(now))

	c.Settings.IsActive = true
	past := now.Add(-time.Minute)
	c.Settings.ExpiresAt = &past
	assert.False(t, c.IsActive(now))

	future := now.Add(time.Hour)
	c.Settings.ExpiresAt = &future
	assert.True(t, c.IsActive(now))
}

func TestCardShareURL(t *testing.T) {
	c := &ExperienceCard{CardCode: "QE-ABCD-EFGH"}
	assert.Equal(t, "https://queska.test/experience/QE-ABCD-EFGH", c.ShareURL("https://queska.test"))
}

func TestRecordInteractionPrepends(t *testing.T) {
	c := &ExperienceCard{}

	c.RecordInteraction(CardInteraction{Action: "viewed"})
	c.RecordInteraction(CardInteraction{Action: "saved"})

	require.Len(t, c.RecentInteractions, 2)
	assert.Equal(t, "saved", c.RecentInteractions[0].Action)
	assert.Equal(t, "viewed", c.RecentInteractions[1].Action)
}

func TestRecordInteractionBounded(t *testing.T) {
	c := &ExperienceCard{}
	for i := 0; i < MaxRecentInteractions+10; i++ {
		c.RecordInteraction(CardInteraction{Action: "viewed", Timestamp: time.Now()})
	}

	assert.Len(t, c.RecentInteractions, MaxRecentInteractions)
}

func TestLikeAndSaveMembership(t *testing.T) {
	userID := uuid.New()
	c := &ExperienceCard{LikedBy: []uuid.UUID{userID}}

	assert.True(t, c.IsLikedBy(userID))
	assert.False(t, c.IsLikedBy(uuid.New()))
	assert.False(t, c.IsSavedBy(userID))
}
