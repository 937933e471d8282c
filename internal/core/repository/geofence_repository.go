package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fleettrack/internal/core/model"
)

type GeofenceRepository interface {
	Create(geofence *model.Geofence) error
	FindByVehicleID(vehicleID string) ([]*model.Geofence, error)
}

type MongoGeofenceRepository struct {
	collection *mongo.Collection
}

func NewMongoGeofenceRepository(db *mongo.Database) *MongoGeofenceRepository {
	return &MongoGeofenceRepository{
		collection: db.Collection("geofences"),
	}
}

func (r *MongoGeofenceRepository) Create(geofence *model.Geofence) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, geofence)
	return err
}

func (r *MongoGeofenceRepository) FindByVehicleID(vehicleID string) ([]*model.Geofence, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"vehicleid": vehicleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var geofences []*model.Geofence
	if err = cursor.All(ctx, &geofences); err != nil {
		return nil, err
	}
	return geofences, nil
}
