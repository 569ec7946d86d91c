package mongo

import (
	"context"
	"errors"

	"github.com/yoockh/leadintake/internal/models"
	"github.com/yoockh/leadintake/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeliveryLogRepository interface {
	Insert(ctx context.Context, rec *models.DeliveryRecord) error
	GetByRequestID(ctx context.Context, requestID string) (*models.DeliveryRecord, error)
	ListRecent(ctx context.Context, kind models.LeadKind, limit int64) ([]models.DeliveryRecord, error)
}

type deliveryRepo struct {
	col *mongo.Collection
}

func NewDeliveryRepo(db *mongo.Database, collection string) DeliveryLogRepository {
	return &deliveryRepo{col: db.Collection(collection)}
}

func (r *deliveryRepo) Insert(ctx context.Context, rec *models.DeliveryRecord) error {
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

func (r *deliveryRepo) GetByRequestID(ctx context.Context, requestID string) (*models.DeliveryRecord, error) {
	var rec models.DeliveryRecord
	err := r.col.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *deliveryRepo) ListRecent(ctx context.Context, kind models.LeadKind, limit int64) ([]models.DeliveryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "received_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DeliveryRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
