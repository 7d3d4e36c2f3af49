package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rl1809/pizzan/internal/core/domain"
)

const (
	foodsCollection = "allFoods"
	cartsCollection = "myCarts"
	usersCollection = "users"
)

type foodDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Maker       string             `bson:"maker"`
	Description string             `bson:"description"`
	Origin      string             `bson:"origin"`
	Image       string             `bson:"image"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Email       string             `bson:"email"`
	OrderCount  int                `bson:"order_count"`
	Quantity    int                `bson:"quantity"`
}

type cartDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	FoodID   string             `bson:"food_id"`
	Name     string             `bson:"name"`
	Maker    string             `bson:"maker"`
	Image    string             `bson:"image"`
	Category string             `bson:"category"`
	Price    float64            `bson:"price"`
	Quantity int                `bson:"quantity"`
	AddedAt  time.Time          `bson:"added_at"`
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	AdminID   string             `bson:"admin_id,omitempty"`
	Name      string             `bson:"name"`
	Photo     string             `bson:"photo"`
	CreatedAt time.Time          `bson:"created_at"`
}

// MongoAdapter stores each entity as a document; ids are ObjectIDs
// rendered as hex strings.
type MongoAdapter struct {
	client *mongo.Client
	foods  *mongo.Collection
	carts  *mongo.Collection
	users  *mongo.Collection
}

func NewMongoAdapter(client *mongo.Client, database string) *MongoAdapter {
	db := client.Database(database)
	return &MongoAdapter{
		client: client,
		foods:  db.Collection(foodsCollection),
		carts:  db.Collection(cartsCollection),
		users:  db.Collection(usersCollection),
	}
}

func (m *MongoAdapter) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoAdapter) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoAdapter) ListFoods(ctx context.Context, query domain.FoodQuery) ([]domain.MenuItem, error) {
	filter := bson.M{}
	if query.Email != "" {
		filter["email"] = query.Email
	}

	opts := options.Find()
	if query.SortField != "" {
		field, ok := sortColumns[query.SortField]
		if !ok {
			return nil, fmt.Errorf("sort field %q: %w", query.SortField, errUnsupportedSort)
		}
		direction := 1
		if query.SortDesc {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: 1}})
	}
	if query.Size > 0 {
		opts.SetSkip(int64(query.Skip())).SetLimit(int64(query.Size))
	}

	cursor, err := m.foods.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find foods: %w", err)
	}
	var docs []foodDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode foods: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toDomain())
	}
	return items, nil
}

func (m *MongoAdapter) EstimatedFoodCount(ctx context.Context) (int64, error) {
	count, err := m.foods.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("estimate foods: %w", err)
	}
	return count, nil
}

func (m *MongoAdapter) GetFood(ctx context.Context, id string) (*domain.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc foodDocument
	err = m.foods.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find food: %w", err)
	}

	item := doc.toDomain()
	return &item, nil
}

func (m *MongoAdapter) InsertFood(ctx context.Context, item domain.MenuItem) (domain.InsertResult, error) {
	doc := newFoodDocument(primitive.NilObjectID, item)
	res, err := m.foods.InsertOne(ctx, doc)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert food: %w", err)
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: insertedHex(res.InsertedID)}, nil
}

func (m *MongoAdapter) UpdateFoodStock(ctx context.Context, id string, update domain.StockUpdate) (domain.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// no document can carry a malformed id
		return domain.UpdateResult{Acknowledged: true}, nil
	}

	res, err := m.foods.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"order_count": update.OrderCount,
			"quantity":    update.Quantity,
		},
	})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update food: %w", err)
	}
	return domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (m *MongoAdapter) UpsertFood(ctx context.Context, id string, item domain.MenuItem) (domain.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("%w: %q is not an ObjectID", domain.ErrInvalidID, id)
	}

	res, err := m.foods.ReplaceOne(ctx,
		bson.M{"_id": oid},
		newFoodDocument(oid, item),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("replace food: %w", err)
	}

	result := domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedCount > 0 {
		result.UpsertedID = id
	}
	return result, nil
}

func (m *MongoAdapter) InsertCartEntry(ctx context.Context, entry domain.CartEntry) (domain.InsertResult, error) {
	res, err := m.carts.InsertOne(ctx, cartDocument{
		Email:    entry.Email,
		FoodID:   entry.FoodID,
		Name:     entry.Name,
		Maker:    entry.Maker,
		Image:    entry.Image,
		Category: entry.Category,
		Price:    entry.Price,
		Quantity: entry.Quantity,
		AddedAt:  entry.AddedAt,
	})
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert cart entry: %w", err)
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: insertedHex(res.InsertedID)}, nil
}

func (m *MongoAdapter) ListCartEntries(ctx context.Context, email string) ([]domain.CartEntry, error) {
	cursor, err := m.carts.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find cart entries: %w", err)
	}
	var docs []cartDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cart entries: %w", err)
	}

	entries := make([]domain.CartEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, domain.CartEntry{
			ID:       doc.ID.Hex(),
			Email:    doc.Email,
			FoodID:   doc.FoodID,
			Name:     doc.Name,
			Maker:    doc.Maker,
			Image:    doc.Image,
			Category: doc.Category,
			Price:    doc.Price,
			Quantity: doc.Quantity,
			AddedAt:  doc.AddedAt,
		})
	}
	return entries, nil
}

func (m *MongoAdapter) DeleteCartEntry(ctx context.Context, id string) (domain.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.DeleteResult{Acknowledged: true}, nil
	}

	res, err := m.carts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete cart entry: %w", err)
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (m *MongoAdapter) InsertUser(ctx context.Context, user domain.User) (domain.InsertResult, error) {
	res, err := m.users.InsertOne(ctx, userDocument{
		Email:     user.Email,
		AdminID:   user.AdminID,
		Name:      user.Name,
		Photo:     user.Photo,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: insertedHex(res.InsertedID)}, nil
}

func (m *MongoAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := m.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toDomain())
	}
	return users, nil
}

func (m *MongoAdapter) GetUserByAdminID(ctx context.Context, adminID string) (*domain.User, error) {
	var doc userDocument
	err := m.users.FindOne(ctx, bson.M{"admin_id": adminID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user := doc.toDomain()
	return &user, nil
}

func newFoodDocument(id primitive.ObjectID, item domain.MenuItem) foodDocument {
	return foodDocument{
		ID:          id,
		Name:        item.Name,
		Maker:       item.Maker,
		Description: item.Description,
		Origin:      item.Origin,
		Image:       item.Image,
		Price:       item.Price,
		Category:    item.Category,
		Email:       item.Email,
		OrderCount:  item.OrderCount,
		Quantity:    item.Quantity,
	}
}

func (d foodDocument) toDomain() domain.MenuItem {
	return domain.MenuItem{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Maker:       d.Maker,
		Description: d.Description,
		Origin:      d.Origin,
		Image:       d.Image,
		Price:       d.Price,
		Category:    d.Category,
		Email:       d.Email,
		OrderCount:  d.OrderCount,
		Quantity:    d.Quantity,
	}
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		AdminID:   d.AdminID,
		Name:      d.Name,
		Photo:     d.Photo,
		CreatedAt: d.CreatedAt,
	}
}

func insertedHex(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
