package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client           *mongo.Client
	PanelsCollection *mongo.Collection
	SlotsCollection  *mongo.Collection
)

// Init connects to MongoDB and binds the named collections. MONGO_URI
// defaults to a local instance when unset.
func Init(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	Client = client
	PanelsCollection = client.Database("slotdb").Collection("panels")
	SlotsCollection = client.Database("slotdb").Collection("slots")

	ensureIndexes(ctx)
	return nil
}

// ensureIndexes creates the uniqueness constraints the booking core relies
// on: one slot per (panelid, number), plus fast slotid lookups.
func ensureIndexes(ctx context.Context) {
	_, err := SlotsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "panelid", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slotid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		log.Println("slot index creation failed:", err)
	}

	_, err = PanelsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "panelid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("panel index creation failed:", err)
	}
}

// Close disconnects the client.
func Close(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Println("mongo disconnect error:", err)
	}
}
