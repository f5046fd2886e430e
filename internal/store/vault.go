package store

import (
	"context"
	"log/slog"

	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
)

// Vault combines the DynamoDB store and the S3 archive behind the
// brainstorm.IdeaStore interface: saving an idea archives its transcript
// first, then writes the record pointing at it.
type Vault struct {
	store   *Store
	archive *Archive
	log     *slog.Logger
}

// NewVault wires a Vault. archive may be nil when no bucket is configured;
// ideas are then stored without transcripts.
func NewVault(store *Store, archive *Archive, log *slog.Logger) *Vault {
	if log == nil {
		log = slog.Default()
	}
	return &Vault{store: store, archive: archive, log: log.With("component", "vault")}
}

// SaveIdea implements brainstorm.IdeaStore. A transcript upload failure is
// not fatal: the record is still written, just without an archive key.
func (v *Vault) SaveIdea(ctx context.Context, idea brainstorm.FoundIdea) (brainstorm.FoundIdea, error) {
	if v.archive != nil && len(idea.Conversation) > 0 {
		key, err := v.archive.SaveTranscript(ctx, idea.ID, idea.Conversation)
		if err != nil {
			v.log.Warn("transcript archive failed", "error", err, "idea", idea.ID)
		} else {
			idea.ArchiveKey = key
		}
	}

	if _, err := v.store.CreateIdea(ctx, idea); err != nil {
		return brainstorm.FoundIdea{}, err
	}
	return idea, nil
}

// AwardPoints implements brainstorm.IdeaStore.
func (v *Vault) AwardPoints(ctx context.Context, delta int) (brainstorm.Profile, error) {
	return v.store.AwardPoints(ctx, delta)
}

// ListTitles implements brainstorm.IdeaStore.
func (v *Vault) ListTitles(ctx context.Context) ([]string, error) {
	return v.store.ListTitles(ctx)
}
