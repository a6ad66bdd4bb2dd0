package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CategoryUUID derives the id for a seeded category page from its slug.
func CategoryUUID(slug string) uuid.UUID {
	return UUID("taskpages:category:" + strings.ToLower(strings.TrimSpace(slug)))
}

// ArticleUUID derives the id for a seeded article from its slug.
func ArticleUUID(slug string) uuid.UUID {
	return UUID("taskpages:article:" + strings.ToLower(strings.TrimSpace(slug)))
}

// SeedActorUUID derives the id attributed to seed-created records.
func SeedActorUUID() uuid.UUID {
	return UUID("taskpages:actor:seed")
}
