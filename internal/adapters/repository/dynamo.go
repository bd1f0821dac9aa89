package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okian/volmatch/internal/domain/model"
	"github.com/okian/volmatch/pkg/metrics"
)

// Default DynamoDB table names.
const (
	DefaultEventsTable     = "Events"
	DefaultVolunteersTable = "Volunteers"
	DefaultHistoryTable    = "VolunteerHistory"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// NewDynamoClient builds a DynamoDB client from the default AWS credential
// chain. A non-empty endpoint overrides the service URL (e.g. DynamoDB Local).
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrUnavailable, err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// DynamoStore reads the directories from and writes history to DynamoDB.
//
// Events and volunteers are keyed by "id". History is keyed by "eventId"
// (partition) and "volunteerId" (sort), which makes Create idempotent
// through a conditional put.
type DynamoStore struct {
	client          DynamoAPI
	eventsTable     string
	volunteersTable string
	historyTable    string
	now             func() time.Time
}

// NewDynamoStore creates a store backed by client.
func NewDynamoStore(client DynamoAPI, opts ...DynamoOption) *DynamoStore {
	s := &DynamoStore{
		client:          client,
		eventsTable:     DefaultEventsTable,
		volunteersTable: DefaultVolunteersTable,
		historyTable:    DefaultHistoryTable,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type eventItem struct {
	ID             string   `dynamodbav:"id"`
	Name           string   `dynamodbav:"name"`
	RequiredSkills []string `dynamodbav:"requiredSkills,omitempty"`
	Date           string   `dynamodbav:"date,omitempty"`
	Location       string   `dynamodbav:"location,omitempty"`
	Urgency        string   `dynamodbav:"urgency,omitempty"`
	TaskCategories []string `dynamodbav:"taskCategories,omitempty"`
}

type volunteerItem struct {
	ID          string            `dynamodbav:"id"`
	FirstName   string            `dynamodbav:"firstName"`
	LastName    string            `dynamodbav:"lastName"`
	Skills      []string          `dynamodbav:"skills,omitempty"`
	Preferences map[string]string `dynamodbav:"preferences,omitempty"`
}

type historyItem struct {
	EventID     string `dynamodbav:"eventId"`
	VolunteerID string `dynamodbav:"volunteerId"`
	ID          string `dynamodbav:"id"`
	CreatedAt   string `dynamodbav:"createdAt"`
	Priority    int    `dynamodbav:"priority"`
}

// Kind implements Store.
func (s *DynamoStore) Kind() string { return KindDynamoDB }

// FindByID implements EventStore.
func (s *DynamoStore) FindByID(ctx context.Context, id string) (model.Event, error) {
	start := time.Now()
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.eventsTable),
		Key:       stringKey("id", id),
	})
	metrics.RecordStoreOperation(KindDynamoDB, "find_event", sinceMs(start), err)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: get event %s: %w", ErrUnavailable, id, err)
	}
	if len(out.Item) == 0 {
		return model.Event{}, ErrNotFound
	}

	var item eventItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return model.Event{}, fmt.Errorf("%w: decode event %s: %w", ErrUnavailable, id, err)
	}
	return item.toModel()
}

// Find implements VolunteerStore. A filter with ids issues one GetItem per
// distinct id; an empty filter scans the table.
func (s *DynamoStore) Find(ctx context.Context, filter VolunteerFilter) ([]model.Volunteer, error) {
	start := time.Now()
	var (
		out []model.Volunteer
		err error
	)
	if len(filter.IDs) == 0 {
		out, err = s.scanVolunteers(ctx)
	} else {
		out, err = s.getVolunteers(ctx, filter.IDs)
	}
	metrics.RecordStoreOperation(KindDynamoDB, "find_volunteers", sinceMs(start), err)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *DynamoStore) scanVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	out := []model.Volunteer{}
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.volunteersTable),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: scan volunteers: %w", ErrUnavailable, err)
		}
		var items []volunteerItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("%w: decode volunteers: %w", ErrUnavailable, err)
		}
		for _, it := range items {
			out = append(out, it.toModel())
		}
	}
	return out, nil
}

func (s *DynamoStore) getVolunteers(ctx context.Context, ids []string) ([]model.Volunteer, error) {
	out := make([]model.Volunteer, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || strings.TrimSpace(id) == "" {
			continue
		}
		seen[id] = struct{}{}

		res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.volunteersTable),
			Key:       stringKey("id", id),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: get volunteer %s: %w", ErrUnavailable, id, err)
		}
		if len(res.Item) == 0 {
			continue
		}
		var item volunteerItem
		if err := attributevalue.UnmarshalMap(res.Item, &item); err != nil {
			return nil, fmt.Errorf("%w: decode volunteer %s: %w", ErrUnavailable, id, err)
		}
		out = append(out, item.toModel())
	}
	return out, nil
}

// Create implements HistoryStore with a conditional put. When the
// (eventId, volunteerId) key already exists the stored record is read back
// and returned unchanged.
func (s *DynamoStore) Create(ctx context.Context, rec model.HistoryRecord) (model.HistoryRecord, bool, error) {
	if strings.TrimSpace(rec.EventID) == "" || strings.TrimSpace(rec.VolunteerID) == "" {
		return model.HistoryRecord{}, false, ErrInvalidRecord
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	start := time.Now()
	av, err := attributevalue.MarshalMap(historyFromModel(rec))
	if err != nil {
		return model.HistoryRecord{}, false, fmt.Errorf("encode history record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.historyTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(eventId) AND attribute_not_exists(volunteerId)"),
	})

	var conflict *types.ConditionalCheckFailedException
	switch {
	case err == nil:
		metrics.RecordStoreOperation(KindDynamoDB, "create_history", sinceMs(start), nil)
		return rec, true, nil
	case errors.As(err, &conflict):
		metrics.RecordStoreOperation(KindDynamoDB, "create_history", sinceMs(start), nil)
		existing, getErr := s.getHistory(ctx, rec.EventID, rec.VolunteerID)
		if getErr != nil {
			return model.HistoryRecord{}, false, getErr
		}
		return existing, false, nil
	default:
		metrics.RecordStoreOperation(KindDynamoDB, "create_history", sinceMs(start), err)
		return model.HistoryRecord{}, false, fmt.Errorf("%w: put history %s/%s: %w",
			ErrUnavailable, rec.EventID, rec.VolunteerID, err)
	}
}

func (s *DynamoStore) getHistory(ctx context.Context, eventID, volunteerID string) (model.HistoryRecord, error) {
	key := stringKey("eventId", eventID)
	key["volunteerId"] = &types.AttributeValueMemberS{Value: volunteerID}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.historyTable),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("%w: get history %s/%s: %w", ErrUnavailable, eventID, volunteerID, err)
	}
	if len(out.Item) == 0 {
		return model.HistoryRecord{}, fmt.Errorf("%w: history %s/%s vanished after conflict", ErrUnavailable, eventID, volunteerID)
	}
	var item historyItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return model.HistoryRecord{}, fmt.Errorf("%w: decode history: %w", ErrUnavailable, err)
	}
	return item.toModel(), nil
}

// ListByEvent implements HistoryStore.
func (s *DynamoStore) ListByEvent(ctx context.Context, eventID string) ([]model.HistoryRecord, error) {
	start := time.Now()
	out := []model.HistoryRecord{}
	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.historyTable),
		KeyConditionExpression: aws.String("eventId = :eventId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":eventId": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			metrics.RecordStoreOperation(KindDynamoDB, "list_history", sinceMs(start), err)
			return nil, fmt.Errorf("%w: query history %s: %w", ErrUnavailable, eventID, err)
		}
		var items []historyItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("%w: decode history: %w", ErrUnavailable, err)
		}
		for _, it := range items {
			out = append(out, it.toModel())
		}
	}
	metrics.RecordStoreOperation(KindDynamoDB, "list_history", sinceMs(start), nil)
	SortHistory(out)
	return out, nil
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func (it eventItem) toModel() (model.Event, error) {
	urgency, err := model.ParseUrgency(it.Urgency)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: event %s: %w", ErrUnavailable, it.ID, err)
	}
	date, err := parseDate(it.Date)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: event %s: %w", ErrUnavailable, it.ID, err)
	}
	return model.Event{
		ID:             it.ID,
		Name:           it.Name,
		RequiredSkills: it.RequiredSkills,
		Date:           date,
		Location:       it.Location,
		Urgency:        urgency,
		TaskCategories: it.TaskCategories,
	}, nil
}

func (it volunteerItem) toModel() model.Volunteer {
	return model.Volunteer{
		ID:          it.ID,
		FirstName:   it.FirstName,
		LastName:    it.LastName,
		Skills:      it.Skills,
		Preferences: it.Preferences,
	}
}

func historyFromModel(rec model.HistoryRecord) historyItem {
	return historyItem{
		EventID:     rec.EventID,
		VolunteerID: rec.VolunteerID,
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		Priority:    rec.Priority,
	}
}

func (it historyItem) toModel() model.HistoryRecord {
	// A malformed timestamp sorts first rather than failing the listing.
	created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	return model.HistoryRecord{
		ID:          it.ID,
		VolunteerID: it.VolunteerID,
		EventID:     it.EventID,
		CreatedAt:   created,
		Priority:    it.Priority,
	}
}
