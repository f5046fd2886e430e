package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yosoyorhan/Fikir-motoru/internal/brainstorm"
)

// IdeaItem is the DynamoDB record for a saved idea. Single-table layout:
// PK "IDEA#<id>" / SK "METADATA", with GSI1 ordering all ideas by creation
// time for listing.
type IdeaItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	IdeaID      string `dynamodbav:"ideaId"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description,omitempty"`
	Topic       string `dynamodbav:"topic,omitempty"`
	Status      string `dynamodbav:"status"`
	ArchiveKey  string `dynamodbav:"archiveKey,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt"`
}

// profileItem is the single gamification record.
type profileItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	Points int    `dynamodbav:"points"`
	Level  string `dynamodbav:"level"`
}

const (
	ideaPKPrefix = "IDEA#"
	metadataSK   = "METADATA"
	ideasGSI1PK  = "IDEAS"
	profilePK    = "PROFILE"

	// startingPoints is the profile balance before any accepted idea.
	startingPoints = 100
)

// Store handles DynamoDB operations for ideas and the profile.
type Store struct {
	client    *dynamodb.Client
	tableName string
}

// NewStore creates a DynamoDB store.
func NewStore(client *dynamodb.Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// newIdeaItem shapes a found idea into its single-table record.
func newIdeaItem(idea brainstorm.FoundIdea, now string) IdeaItem {
	return IdeaItem{
		PK:          ideaPKPrefix + idea.ID,
		SK:          metadataSK,
		GSI1PK:      ideasGSI1PK,
		GSI1SK:      now + "#" + idea.ID,
		IdeaID:      idea.ID,
		Title:       idea.Title,
		Description: idea.Description,
		Topic:       idea.Topic,
		Status:      string(idea.Status),
		ArchiveKey:  idea.ArchiveKey,
		CreatedAt:   now,
	}
}

// CreateIdea inserts a new idea record. The idea's ID must be unused.
func (s *Store) CreateIdea(ctx context.Context, idea brainstorm.FoundIdea) (IdeaItem, error) {
	item := newIdeaItem(idea, time.Now().UTC().Format(time.RFC3339))

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return IdeaItem{}, fmt.Errorf("marshal idea item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return IdeaItem{}, fmt.Errorf("put idea item: %w", err)
	}
	return item, nil
}

// validStatusTransitions is the review pipeline: pooled ideas go under
// review, reviewed ideas get approved. Moving backwards to the pool is
// allowed from review.
var validStatusTransitions = map[brainstorm.IdeaStatus][]brainstorm.IdeaStatus{
	brainstorm.StatusPooled:      {brainstorm.StatusUnderReview},
	brainstorm.StatusUnderReview: {brainstorm.StatusApproved, brainstorm.StatusPooled},
	brainstorm.StatusApproved:    {},
}

func transitionAllowed(from, to brainstorm.IdeaStatus) bool {
	for _, next := range validStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves an idea along the review pipeline.
func (s *Store) UpdateStatus(ctx context.Context, id string, status brainstorm.IdeaStatus) error {
	current, err := s.GetIdea(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("idea %s not found", id)
	}

	from := brainstorm.IdeaStatus(current.Status)
	if !transitionAllowed(from, status) {
		return fmt.Errorf("idea %s cannot move from %q to %q", id, from, status)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPKPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
		UpdateExpression: aws.String("SET #status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("update idea status: %w", err)
	}
	return nil
}

// GetIdea retrieves a single idea by ID. A missing idea returns (nil, nil).
func (s *Store) GetIdea(ctx context.Context, id string) (*IdeaItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPKPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item IdeaItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal idea: %w", err)
	}
	return &item, nil
}

// ListIdeas returns ideas ordered by creation time (newest first) via GSI1.
func (s *Store) ListIdeas(ctx context.Context, limit int, cursor string) ([]IdeaItem, string, error) {
	if limit <= 0 {
		limit = 20
	}

	input := &dynamodb.QueryInput{
		TableName:              &s.tableName,
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: ideasGSI1PK},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	if cursor != "" {
		// cursor is the full GSI1SK value ({timestamp}#{id})
		parts := strings.SplitN(cursor, "#", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("invalid cursor format")
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"PK":     &types.AttributeValueMemberS{Value: ideaPKPrefix + parts[1]},
			"SK":     &types.AttributeValueMemberS{Value: metadataSK},
			"GSI1PK": &types.AttributeValueMemberS{Value: ideasGSI1PK},
			"GSI1SK": &types.AttributeValueMemberS{Value: cursor},
		}
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("list ideas: %w", err)
	}

	var items []IdeaItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, "", fmt.Errorf("unmarshal idea list: %w", err)
	}

	var nextCursor string
	if result.LastEvaluatedKey != nil {
		if gsi1sk, ok := result.LastEvaluatedKey["GSI1SK"].(*types.AttributeValueMemberS); ok {
			nextCursor = gsi1sk.Value
		}
	}

	return items, nextCursor, nil
}

// ListTitles returns saved idea titles for the vault hint.
func (s *Store) ListTitles(ctx context.Context) ([]string, error) {
	items, _, err := s.ListIdeas(ctx, 100, "")
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	return titles, nil
}

// LevelFor maps a point balance to the profile level label.
func LevelFor(points int) string {
	switch {
	case points >= 500:
		return "İnovasyon Lideri"
	case points >= 250:
		return "Fikir Avcısı"
	default:
		return "Başlangıç"
	}
}

// GetProfile reads the gamification record, defaulting a fresh profile.
func (s *Store) GetProfile(ctx context.Context) (brainstorm.Profile, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: profilePK},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return brainstorm.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if result.Item == nil {
		return brainstorm.Profile{Points: startingPoints, Level: LevelFor(startingPoints)}, nil
	}

	var item profileItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return brainstorm.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return brainstorm.Profile{Points: item.Points, Level: item.Level}, nil
}

// AwardPoints adds delta to the profile balance and refreshes the level.
func (s *Store) AwardPoints(ctx context.Context, delta int) (brainstorm.Profile, error) {
	current, err := s.GetProfile(ctx)
	if err != nil {
		return brainstorm.Profile{}, err
	}
	points := current.Points + delta
	level := LevelFor(points)

	item := profileItem{PK: profilePK, SK: metadataSK, Points: points, Level: level}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return brainstorm.Profile{}, fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      av,
	})
	if err != nil {
		return brainstorm.Profile{}, fmt.Errorf("put profile: %w", err)
	}
	return brainstorm.Profile{Points: points, Level: level}, nil
}
