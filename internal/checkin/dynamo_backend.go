package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/totalfootcare/checkin-kiosk/internal/patients"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// dynamoAPI is the subset of the DynamoDB client used by DynamoBackend.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoBackend writes the check-in document to the kiosk table and flips
// the patient's check-in status in place.
type DynamoBackend struct {
	client   dynamoAPI
	table    string
	patients patients.Repository
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

// NewDynamoBackend creates the document-store backend.
func NewDynamoBackend(client dynamoAPI, table string, repo patients.Repository, logger *logging.Logger) *DynamoBackend {
	if client == nil {
		panic("checkin: nil dynamo client")
	}
	if table == "" {
		panic("checkin: empty table name")
	}
	if repo == nil {
		panic("checkin: nil patient repository")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoBackend{
		client:   client,
		table:    table,
		patients: repo,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// checkinDocument is the persisted kiosk record: the payload plus the keys
// that tie it to the appointment.
type checkinDocument struct {
	ID          string `dynamodbav:"id"`
	EncounterID string `dynamodbav:"encounterId"`
	CreatedAt   string `dynamodbav:"createdAt"`
	Payload
}

// Submit stores the kiosk document, then marks the matched patient checked
// in. The document write happens first so a status-flip failure never loses
// the submitted form.
func (b *DynamoBackend) Submit(ctx context.Context, encounterID string, payload Payload) (*Confirmation, error) {
	matches, err := b.patients.FindByEncounterID(ctx, encounterID)
	if err != nil {
		return nil, fmt.Errorf("checkin: lookup encounter %s: %w", encounterID, err)
	}
	if len(matches) == 0 {
		return nil, &SubmitError{StatusCode: 404, Message: "No appointment found for this encounter"}
	}
	patient := matches[0]

	doc := checkinDocument{
		ID:          b.newID(),
		EncounterID: encounterID,
		CreatedAt:   b.now().UTC().Format(time.RFC3339),
		Payload:     payload,
	}
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, fmt.Errorf("checkin: marshal document: %w", err)
	}
	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("checkin: put document: %w", err)
	}

	update := patients.CheckInUpdate{
		CheckInTime: b.now(),
		KioskDataID: doc.ID,
		Phone:       payload.PersonalInfo.Phone,
		Email:       payload.PersonalInfo.Email,
	}
	if err := b.patients.MarkCheckedIn(ctx, patient.ID, update); err != nil {
		return nil, fmt.Errorf("checkin: mark checked in %s: %w", patient.ID, err)
	}

	b.logger.Info("check-in stored",
		"encounter_id", encounterID,
		"patient_id", patient.ID,
		"kiosk_data_id", doc.ID,
	)
	return &Confirmation{EncounterID: encounterID, Message: "Check-in completed successfully"}, nil
}
