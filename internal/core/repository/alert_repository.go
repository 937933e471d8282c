package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fleettrack/internal/core/model"
)

type AlertRepository interface {
	Create(alert *model.Alert) error
	FindByVehicleID(vehicleID string) ([]*model.Alert, error)
}

type MongoAlertRepository struct {
	collection *mongo.Collection
}

func NewMongoAlertRepository(db *mongo.Database) *MongoAlertRepository {
	return &MongoAlertRepository{
		collection: db.Collection("alerts"),
	}
}

func (r *MongoAlertRepository) Create(alert *model.Alert) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, alert)
	return err
}

func (r *MongoAlertRepository) FindByVehicleID(vehicleID string) ([]*model.Alert, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"vehicleid": vehicleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []*model.Alert
	if err = cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}
