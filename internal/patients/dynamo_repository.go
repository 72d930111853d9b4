package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

const (
	encounterIndex = "encounterId-index"
	firstNameIndex = "firstName-index"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoRepository reads and updates patient appointment records in DynamoDB.
// Records are stored with whatever field names the scheduling importer used;
// every read goes through FromRaw so callers only see canonical names.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Repository = (*DynamoRepository)(nil)

// NewDynamoRepository builds a repository backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("patients: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("patients: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, logger: logger}
}

func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("patients: get %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrPatientNotFound
	}
	return r.itemToRecord(out.Item)
}

func (r *DynamoRepository) FindByEncounterID(ctx context.Context, encounterID string) ([]*Record, error) {
	return r.queryIndex(ctx, encounterIndex, "encounterId", encounterID)
}

func (r *DynamoRepository) FindByFirstName(ctx context.Context, firstName string) ([]*Record, error) {
	return r.queryIndex(ctx, firstNameIndex, "firstName", firstName)
}

func (r *DynamoRepository) queryIndex(ctx context.Context, index, attr, value string) ([]*Record, error) {
	var records []*Record
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#a = :v"),
			ExpressionAttributeNames: map[string]string{
				"#a": attr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": &types.AttributeValueMemberS{Value: value},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("patients: query %s: %w", index, err)
		}
		for _, item := range out.Items {
			record, err := r.itemToRecord(item)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ScanAll reads the whole table. A full scan is the last-resort fallback for
// records imported with off-index field aliases; the table is one clinic's
// daily schedule, small enough for this to be acceptable.
func (r *DynamoRepository) ScanAll(ctx context.Context) ([]*Record, error) {
	var records []*Record
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("patients: scan: %w", err)
		}
		for _, item := range out.Items {
			record, err := r.itemToRecord(item)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *DynamoRepository) MarkCheckedIn(ctx context.Context, id string, update CheckInUpdate) error {
	values := map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: string(StatusCheckedIn)},
		":time":    &types.AttributeValueMemberS{Value: update.CheckInTime.UTC().Format(time.RFC3339)},
		":kiosk":   &types.AttributeValueMemberS{Value: update.KioskDataID},
		":phone":   &types.AttributeValueMemberS{Value: update.Phone},
		":email":   &types.AttributeValueMemberS{Value: update.Email},
		":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression:    aws.String("SET checkInStatus = :status, checkInTime = :time, kioskDataId = :kiosk, phone = :phone, email = :email, updatedAt = :updated"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("patients: mark checked in %s: %w", id, err)
	}
	return nil
}

func (r *DynamoRepository) itemToRecord(item map[string]types.AttributeValue) (*Record, error) {
	var raw map[string]any
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return nil, fmt.Errorf("patients: unmarshal item: %w", err)
	}
	id, _ := raw["id"].(string)
	return FromRaw(id, raw), nil
}
