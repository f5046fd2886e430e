package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
)

func TestNewIdeaItemShape(t *testing.T) {
	idea := brainstorm.FoundIdea{
		ID:          "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Title:       "Akıllı Sera",
		Description: "IoT sera takibi.",
		Topic:       "tarım",
		Status:      brainstorm.StatusPooled,
		ArchiveKey:  "conversations/01ARZ3NDEKTSV4RRFFQ69G5FAV.json",
	}
	item := newIdeaItem(idea, "2026-08-28T10:00:00Z")

	assert.Equal(t, "IDEA#01ARZ3NDEKTSV4RRFFQ69G5FAV", item.PK)
	assert.Equal(t, "METADATA", item.SK)
	assert.Equal(t, "IDEAS", item.GSI1PK)
	assert.Equal(t, "2026-08-28T10:00:00Z#01ARZ3NDEKTSV4RRFFQ69G5FAV", item.GSI1SK)
	assert.Equal(t, "Havuz (Kasa)", item.Status)
	assert.Equal(t, "2026-08-28T10:00:00Z", item.CreatedAt)
}

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to brainstorm.IdeaStatus
		want     bool
	}{
		{brainstorm.StatusPooled, brainstorm.StatusUnderReview, true},
		{brainstorm.StatusUnderReview, brainstorm.StatusApproved, true},
		{brainstorm.StatusUnderReview, brainstorm.StatusPooled, true},
		{brainstorm.StatusPooled, brainstorm.StatusApproved, false},
		{brainstorm.StatusApproved, brainstorm.StatusPooled, false},
		{brainstorm.StatusApproved, brainstorm.StatusUnderReview, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "Başlangıç", LevelFor(0))
	assert.Equal(t, "Başlangıç", LevelFor(249))
	assert.Equal(t, "Fikir Avcısı", LevelFor(250))
	assert.Equal(t, "Fikir Avcısı", LevelFor(499))
	assert.Equal(t, "İnovasyon Lideri", LevelFor(500))
}
