package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the gateway calls.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type Tables struct {
	Members         string
	Attendance      string
	AttendanceIndex string
}

type DynamoGateway struct {
	client DynamoAPI
	tables Tables
}

func NewDynamoGateway(client DynamoAPI, tables Tables) *DynamoGateway {
	return &DynamoGateway{client: client, tables: tables}
}

func memberKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

func (g *DynamoGateway) GetMember(ctx context.Context, userID string) (*Member, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(g.tables.Members),
		Key:       memberKey(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", userID, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var m Member
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", userID, err)
	}
	return &m, nil
}

func (g *DynamoGateway) PutMember(ctx context.Context, m *Member) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("encode member %s: %w", m.UserID, err)
	}

	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(g.tables.Members),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put member %s: %w", m.UserID, err)
	}
	return nil
}

func (g *DynamoGateway) UpdateMember(ctx context.Context, userID string, upd MemberUpdate) (*Member, error) {
	upd = upd.withTimestamp()

	set := expression.Set(expression.Name("updatedAt"), expression.Value(upd.UpdatedAt))
	if upd.SubscriptionType != nil {
		set = set.Set(expression.Name("subscriptionType"), expression.Value(*upd.SubscriptionType))
	}
	if upd.SubscriptionStatus != nil {
		set = set.Set(expression.Name("subscriptionStatus"), expression.Value(*upd.SubscriptionStatus))
	}
	if upd.EndDate != nil {
		set = set.Set(expression.Name("endDate"), expression.Value(*upd.EndDate))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(set).
		WithCondition(expression.AttributeExists(expression.Name("userId"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build update for %s: %w", userID, err)
	}

	out, err := g.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.tables.Members),
		Key:                       memberKey(userID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update member %s: %w", userID, err)
	}

	var m Member
	if err := attributevalue.UnmarshalMap(out.Attributes, &m); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", userID, err)
	}
	return &m, nil
}

func (g *DynamoGateway) PutAttendance(ctx context.Context, rec *AttendanceRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("encode attendance %s: %w", rec.ID, err)
	}

	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(g.tables.Attendance),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put attendance %s: %w", rec.ID, err)
	}
	return nil
}

func (g *DynamoGateway) QueryAttendance(ctx context.Context, userID string, limit int) ([]AttendanceRecord, error) {
	keyCond := expression.Key("userId").Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build attendance query for %s: %w", userID, err)
	}

	out, err := g.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(g.tables.Attendance),
		IndexName:                 aws.String(g.tables.AttendanceIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("query attendance for %s: %w", userID, err)
	}

	records := []AttendanceRecord{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("decode attendance for %s: %w", userID, err)
	}
	return records, nil
}

func (g *DynamoGateway) ScanActiveMembers(ctx context.Context) ([]Member, error) {
	filter := expression.Name("subscriptionStatus").Equal(expression.Value(StatusActive))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("build active member scan: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(g.client, &dynamodb.ScanInput{
		TableName:                 aws.String(g.tables.Members),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	members := []Member{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan active members: %w", err)
		}
		var batch []Member
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("decode active members: %w", err)
		}
		members = append(members, batch...)
	}
	return members, nil
}
