package slotstore

import (
	"context"
	"fmt"
	"time"

	"slotboard/models"
	"slotboard/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps slots in MongoDB. The CAS is a single conditional
// UpdateOne with the expected status in the filter, so the check-and-set
// is atomic at the document level.
type MongoStore struct {
	panels *mongo.Collection
	slots  *mongo.Collection
}

func NewMongoStore(panels, slots *mongo.Collection) *MongoStore {
	return &MongoStore{panels: panels, slots: slots}
}

// storeTimeout bounds every storage call so callers see
// ErrStoreUnavailable instead of hanging.
const storeTimeout = 5 * time.Second

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (s *MongoStore) CreateSlots(ctx context.Context, panel models.Panel, numbers []int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := s.slots.CountDocuments(ctx, bson.M{"panelid": panel.PanelID})
	if err != nil {
		return nil, storeErr(err)
	}
	if count > 0 {
		return nil, ErrPanelExists
	}

	panel.CreatedAt = time.Now().UTC()
	if _, err := s.panels.UpdateOne(ctx,
		bson.M{"panelid": panel.PanelID},
		bson.M{"$setOnInsert": panel},
		options.Update().SetUpsert(true),
	); err != nil {
		return nil, storeErr(err)
	}

	docs := make([]interface{}, 0, len(numbers))
	ids := make([]string, 0, len(numbers))
	for _, n := range numbers {
		id := utils.GenerateRandomDigitString(14)
		ids = append(ids, id)
		docs = append(docs, models.Slot{
			SlotID:  id,
			PanelID: panel.PanelID,
			Number:  n,
			Status:  models.StatusOpen,
		})
	}
	if _, err := s.slots.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrPanelExists
		}
		return nil, storeErr(err)
	}
	return ids, nil
}

func (s *MongoStore) Panel(ctx context.Context, panelID string) (*models.Panel, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var panel models.Panel
	err := s.panels.FindOne(ctx, bson.M{"panelid": panelID}).Decode(&panel)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &panel, nil
}

func (s *MongoStore) Panels(ctx context.Context) ([]models.Panel, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cursor, err := s.panels.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}
	defer cursor.Close(ctx)

	var panels []models.Panel
	if err := cursor.All(ctx, &panels); err != nil {
		return nil, storeErr(err)
	}
	return panels, nil
}

func (s *MongoStore) Slot(ctx context.Context, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var slot models.Slot
	err := s.slots.FindOne(ctx, bson.M{"slotid": slotID}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &slot, nil
}

func (s *MongoStore) Snapshot(ctx context.Context, panelID string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cursor, err := s.slots.Find(ctx, bson.M{"panelid": panelID},
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, storeErr(err)
	}
	return slots, nil
}

func (s *MongoStore) TryTransition(ctx context.Context, slotID string, from, to models.Status, occupant *models.Occupant, actor string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	set := bson.M{"status": to}
	now := time.Now().UTC()
	switch to {
	case models.StatusPending:
		set["occupant"] = occupant
		set["bookedAt"] = now
	case models.StatusOpen:
		// Reopening always clears the occupant; anyone may resubmit.
		set["occupant"] = nil
	}
	if actor != "" {
		set["decidedBy"] = actor
		set["decidedAt"] = now
	}

	// Expected status in the filter is what makes this a CAS: a concurrent
	// caller who already moved the slot leaves nothing for us to match.
	res, err := s.slots.UpdateOne(ctx,
		bson.M{"slotid": slotID, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, storeErr(err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) SetDisplayHandle(ctx context.Context, panelID, channelID, messageID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, err := s.panels.UpdateOne(ctx,
		bson.M{"panelid": panelID},
		bson.M{"$set": bson.M{"channelId": channelID, "messageId": messageID}},
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *MongoStore) ClearPanel(ctx context.Context, panelID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.slots.DeleteMany(ctx, bson.M{"panelid": panelID}); err != nil {
		return storeErr(err)
	}
	if _, err := s.panels.DeleteOne(ctx, bson.M{"panelid": panelID}); err != nil {
		return storeErr(err)
	}
	return nil
}
