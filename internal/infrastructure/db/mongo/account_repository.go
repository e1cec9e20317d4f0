package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

// AccountRepository implements ports.AccountRepository on the accounts and
// password_resets collections.
type AccountRepository struct {
	accounts *mongo.Collection
	resets   *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		accounts: db.Collection(collectionAccounts),
		resets:   db.Collection(collectionResetTokens),
	}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone,omitempty"`
	Role         string             `bson:"role"`
	Commune      string             `bson:"commune,omitempty"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type resetTokenDoc struct {
	UserID    string    `bson:"user_id"`
	Email     string    `bson:"email"`
	TokenHash string    `bson:"token_hash"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (r *AccountRepository) Create(ctx context.Context, acc *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toAccountDoc(acc)
	res, err := r.accounts.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.accounts.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) SaveResetToken(ctx context.Context, token *domain.ResetToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.resets.InsertOne(ctx, resetTokenDoc{
		UserID:    token.UserID,
		Email:     token.Email,
		TokenHash: token.TokenHash,
		CreatedAt: token.CreatedAt.UTC(),
		ExpiresAt: token.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

func toAccountDoc(acc *domain.Account) *accountDoc {
	return &accountDoc{
		UserID:       acc.User.ID,
		FirstName:    acc.User.FirstName,
		LastName:     acc.User.LastName,
		Email:        acc.User.Email,
		Phone:        acc.User.Phone,
		Role:         string(acc.User.Role),
		Commune:      acc.User.Commune,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt.UTC(),
		UpdatedAt:    acc.UpdatedAt.UTC(),
	}
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		User: domain.User{
			ID:        d.UserID,
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
			Phone:     d.Phone,
			Role:      domain.Role(d.Role),
			Commune:   d.Commune,
		},
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
