package photo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/storeerr"
)

const (
	photoNumberAttr  = "PhotoNumber"
	tableReadyWait   = 2 * time.Minute
	defaultReadUnits = 5
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepository.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	dynamodb.DescribeTableAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoRepository stores records in a DynamoDB table keyed by PhotoNumber.
type DynamoRepository struct {
	client    DynamoAPI
	tableName string
	log       *zap.Logger
}

// NewDynamoRepository constructs a repository over an existing client.
func NewDynamoRepository(client DynamoAPI, tableName string, log *zap.Logger) *DynamoRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &DynamoRepository{client: client, tableName: tableName, log: log.Named("metadata")}
}

// EnsureTable creates the table with PhotoNumber as its hash key when it does
// not exist yet and waits until it is active.
func (r *DynamoRepository) EnsureTable(ctx context.Context) error {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(photoNumberAttr),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(photoNumberAttr),
				KeyType:       types.KeyTypeHash,
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(defaultReadUnits),
			WriteCapacityUnits: aws.Int64(defaultReadUnits),
		},
	})
	if err != nil {
		if inUse := new(types.ResourceInUseException); errors.As(err, &inUse) {
			return nil
		}
		return r.translate("create table", r.tableName, err)
	}

	r.log.Info("created metadata table", zap.String("table", r.tableName))

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}, tableReadyWait); err != nil {
		return r.translate("wait for table", r.tableName, err)
	}
	return nil
}

// Ping checks that the table is reachable.
func (r *DynamoRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}); err != nil {
		return r.translate("describe table", r.tableName, err)
	}
	return nil
}

// Upsert writes the record with PutItem, which replaces any item sharing the key.
func (r *DynamoRepository) Upsert(ctx context.Context, record Record) (err error) {
	defer func() { observe("upsert", err) }()

	if err := record.Validate(); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return storeerr.New(storeerr.ErrValidation, "upsert record", record.PhotoNumber, err)
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		return r.translate("upsert record", record.PhotoNumber, err)
	}

	r.log.Debug("upserted photo metadata", zap.String("photoNumber", record.PhotoNumber))
	return nil
}

// FindByPhotoNumber scans the whole table with an equality filter on
// PhotoNumber. This is linear in table size; a direct GetItem on the key
// would be the scalable lookup.
func (r *DynamoRepository) FindByPhotoNumber(ctx context.Context, id string) (records []Record, err error) {
	defer func() { observe("find", err) }()

	if err := validateSearchKey(id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#pn = :pn"),
		ExpressionAttributeNames: map[string]string{"#pn": photoNumberAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pn": &types.AttributeValueMemberS{Value: id},
		},
	})

	records = []Record{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.translate("scan records", id, err)
		}

		var batch []Record
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, storeerr.New(storeerr.ErrProvider, "decode records", id, err)
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (r *DynamoRepository) translate(op, target string, err error) error {
	kind := storeerr.ErrProvider
	if notFound := new(types.ResourceNotFoundException); errors.As(err, &notFound) {
		kind = storeerr.ErrNotFound
	}

	fields := []zap.Field{zap.String("op", op), zap.String("target", target), zap.String("table", r.tableName), zap.Error(err)}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("code", apiErr.ErrorCode()))
	}
	r.log.Error("metadata operation failed", fields...)

	return storeerr.New(kind, op, target, err)
}
