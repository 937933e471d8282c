package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleettrack/internal/core/model"
)

// FixRepository is the append-only location sink.
type FixRepository interface {
	Create(fix *model.Fix) error
	FindByVehicleID(vehicleID string) ([]*model.Fix, error)
	FindLatestByDeviceID(deviceID string) (*model.Fix, error)
}

type MongoFixRepository struct {
	collection *mongo.Collection
}

func NewMongoFixRepository(db *mongo.Database) *MongoFixRepository {
	return &MongoFixRepository{
		collection: db.Collection("fixes"),
	}
}

func (r *MongoFixRepository) Create(fix *model.Fix) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, fix)
	return err
}

func (r *MongoFixRepository) FindByVehicleID(vehicleID string) ([]*model.Fix, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"vehicleid": vehicleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fixes []*model.Fix
	if err = cursor.All(ctx, &fixes); err != nil {
		return nil, err
	}
	return fixes, nil
}

func (r *MongoFixRepository) FindLatestByDeviceID(deviceID string) (*model.Fix, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.M{"timestamp": -1})
	var fix model.Fix
	err := r.collection.FindOne(ctx, bson.M{"deviceid": deviceID}, opts).Decode(&fix)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fix, nil
}
