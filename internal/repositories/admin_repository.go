package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventboard/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const adminsCollection = "admins"

type adminRepository struct {
	collection *mongo.Collection
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *mongo.Database) *adminRepository {
	return &adminRepository{
		collection: db.Collection(adminsCollection),
	}
}

// EnsureIndexes creates the unique email and username indexes
func (r *adminRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
	})
	if err != nil {
		return fmt.Errorf("failed to create admin indexes: %w", err)
	}
	return nil
}

// Create inserts a new admin and sets its ID and timestamps
func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	admin.ID = primitive.NewObjectID()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, admin); err != nil {
		admin.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to insert admin: %w: %w", ErrDuplicate, err)
		}
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

// GetByEmail retrieves an admin by email
func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves an admin by ID
func (r *adminRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ExistsByEmailOrUsername checks whether either value is already registered
func (r *adminRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	return count > 0, nil
}

// UpdatePassword replaces the stored password hash of an admin
func (r *adminRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *adminRepository) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := r.collection.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &admin, nil
}
