package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository on the auth_events
// collection.
type AuditRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents), now: time.Now}
}

type authEventDoc struct {
	domain.AuthEvent `bson:",inline"`
	RecordedAt       time.Time `bson:"recorded_at"`
}

// InsertEvent appends event to the audit trail.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := authEventDoc{AuthEvent: *event, RecordedAt: r.now().UTC()}
	doc.Timestamp = doc.Timestamp.UTC()
	_, err := r.col.InsertOne(ctx, doc)
	return err
}
