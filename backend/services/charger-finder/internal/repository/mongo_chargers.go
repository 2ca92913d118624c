package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

const collectionChargers = "chargers"

type chargerDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Latitude      float64            `bson:"latitude"`
	Longitude     float64            `bson:"longitude"`
	Address       string             `bson:"address"`
	Type          string             `bson:"type"`
	Status        string             `bson:"status"`
	Price         float64            `bson:"price"`
	Rating        float64            `bson:"rating"`
	ConnectorType string             `bson:"connectorType"`
}

func newChargerDocument(c models.Charger) chargerDocument {
	id, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		id = primitive.NewObjectID()
	}
	return chargerDocument{
		ID:            id,
		Name:          c.Name,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		Address:       c.Address,
		Type:          c.Type,
		Status:        string(c.Status),
		Price:         c.Price,
		Rating:        c.Rating,
		ConnectorType: c.ConnectorType,
	}
}

func (d chargerDocument) model() models.Charger {
	return models.Charger{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		Address:       d.Address,
		Type:          d.Type,
		Status:        models.Status(d.Status),
		Price:         d.Price,
		Rating:        d.Rating,
		ConnectorType: d.ConnectorType,
	}
}

// boundsFilter expresses the inclusive box predicate as a range query.
func boundsFilter(box geo.BoundingBox) bson.D {
	return bson.D{
		{Key: "latitude", Value: bson.D{{Key: "$gte", Value: box.SouthWestLat}, {Key: "$lte", Value: box.NorthEastLat}}},
		{Key: "longitude", Value: bson.D{{Key: "$gte", Value: box.SouthWestLng}, {Key: "$lte", Value: box.NorthEastLng}}},
	}
}

// MongoChargerRepository stores chargers in a MongoDB collection.
type MongoChargerRepository struct {
	collection *mongo.Collection
}

// NewMongoChargerRepository returns repository bound to db.chargers.
func NewMongoChargerRepository(db *mongo.Database) *MongoChargerRepository {
	return &MongoChargerRepository{collection: db.Collection(collectionChargers)}
}

// EnsureIndexes creates the coordinate index used by range queries.
func (r *MongoChargerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "latitude", Value: 1}, {Key: "longitude", Value: 1}},
		Options: options.Index().SetName("latitude_longitude"),
	})
	return err
}

// FindAll returns every charger.
func (r *MongoChargerRepository) FindAll(ctx context.Context) ([]models.Charger, error) {
	return r.find(ctx, bson.D{})
}

// FindInBounds returns chargers inside box.
func (r *MongoChargerRepository) FindInBounds(ctx context.Context, box geo.BoundingBox) ([]models.Charger, error) {
	return r.find(ctx, boundsFilter(box))
}

func (r *MongoChargerRepository) find(ctx context.Context, filter bson.D) ([]models.Charger, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []chargerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Charger, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// InsertMany stores chargers. Ids that are valid ObjectIDs are kept.
func (r *MongoChargerRepository) InsertMany(ctx context.Context, chargers []models.Charger) ([]models.Charger, error) {
	if len(chargers) == 0 {
		return []models.Charger{}, nil
	}
	docs := make([]interface{}, 0, len(chargers))
	stored := make([]models.Charger, 0, len(chargers))
	for _, c := range chargers {
		doc := newChargerDocument(c)
		docs = append(docs, doc)
		stored = append(stored, doc.model())
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteAll removes every charger.
func (r *MongoChargerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.D{})
	return err
}

// Count returns the number of stored chargers.
func (r *MongoChargerRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}
