package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ichigozero/todokit/usersvc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	libmongo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UsersCollection = "users"

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDocument) user() usersvc.User {
	return usersvc.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	users *libmongo.Collection
}

func NewUserRepository(db *libmongo.Database) usersvc.UserRepository {
	return &userRepository{users: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index the repository relies on.
func EnsureIndexes(ctx context.Context, db *libmongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, libmongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user usersvc.User) (usersvc.User, error) {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	_, err := r.users.InsertOne(ctx, doc)
	if libmongo.IsDuplicateKeyError(err) {
		return usersvc.User{}, usersvc.ErrEmailTaken
	}
	if err != nil {
		return usersvc.User{}, fmt.Errorf("insert user: %w", err)
	}

	user.ID = doc.ID.Hex()
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (usersvc.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, libmongo.ErrNoDocuments) {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	if err != nil {
		return usersvc.User{}, fmt.Errorf("find user: %w", err)
	}

	return doc.user(), nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]usersvc.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]usersvc.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.user())
	}
	return users, nil
}
