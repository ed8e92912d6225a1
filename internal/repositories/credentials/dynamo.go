package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dmitrijs2005/trainspotter/internal/common"
	"github.com/dmitrijs2005/trainspotter/internal/models"
)

// DynamoRepository implements Repository on DynamoDB. The users table is
// keyed by username (HASH) and index (RANGE).
type DynamoRepository struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoRepository(client *dynamodb.Client, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

func (r *DynamoRepository) key(username, index string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: username},
		"index":    &types.AttributeValueMemberS{Value: index},
	}
}

func (r *DynamoRepository) Upsert(ctx context.Context, account *models.Account) error {
	if account == nil || account.Username == "" || account.Index == "" {
		return common.ErrorValidation
	}

	item, err := attributevalue.MarshalMap(account)
	if err != nil {
		return fmt.Errorf("%w: marshal item: %v", common.ErrorStore, err)
	}

	// get-merge-put, as the store contract requires. The read and the
	// write are two separate calls; concurrent writers interleave.
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(account.Username, account.Index),
	})
	if err != nil {
		return fmt.Errorf("%w: get item: %v", common.ErrorStore, err)
	}
	if out.Item != nil {
		merged := out.Item
		for k, v := range item {
			merged[k] = v
		}
		item = merged
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("%w: put item: %v", common.ErrorStore, err)
	}
	return nil
}

func (r *DynamoRepository) Get(ctx context.Context, username, index string) (*models.Account, error) {
	if username == "" || index == "" {
		return nil, common.ErrorValidation
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(username, index),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get item: %v", common.ErrorStore, err)
	}
	if out.Item == nil {
		return nil, common.ErrorNotFound
	}

	account := &models.Account{}
	if err := attributevalue.UnmarshalMap(out.Item, account); err != nil {
		return nil, fmt.Errorf("%w: unmarshal item: %v", common.ErrorStore, err)
	}
	return account, nil
}

func (r *DynamoRepository) ListAll(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrorStore, err)
		}
		var batch []*models.Account
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("%w: unmarshal scan page: %v", common.ErrorStore, err)
		}
		accounts = append(accounts, batch...)
	}

	return accounts, nil
}
