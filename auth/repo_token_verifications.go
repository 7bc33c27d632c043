package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenVerifications stores one-time signup verification tokens.
type TokenVerifications interface {
	repository.Repository[*TokenVerification]

	Record(ctx context.Context, userID uuid.UUID, token string) (*TokenVerification, error)
	RecordTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string) (*TokenVerification, error)
}

type tokenVerifications struct {
	repository.Repository[*TokenVerification]
	db *bun.DB
}

var _ TokenVerifications = (*tokenVerifications)(nil)

func NewTokenVerificationsRepository(db *bun.DB) TokenVerifications {
	repo := repository.NewRepository[*TokenVerification](db, repository.ModelHandlers[*TokenVerification]{
		NewRecord: func() *TokenVerification { return &TokenVerification{} },
		GetID: func(t *TokenVerification) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *TokenVerification, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &tokenVerifications{
		Repository: repo,
		db:         db,
	}
}

func (a *tokenVerifications) Record(ctx context.Context, userID uuid.UUID, token string) (*TokenVerification, error) {
	return a.RecordTx(ctx, a.db, userID, token)
}

func (a *tokenVerifications) RecordTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string) (*TokenVerification, error) {
	if token == "" {
		return nil, goerrors.New("verification token must not be empty", goerrors.CategoryBadInput)
	}

	now := time.Now()
	record := &TokenVerification{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: &now,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record verification token")
	}

	return record, nil
}
