package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"contactbook/contact"
)

// counterID is the key of the item holding the last issued contact id.
const counterID = 0

type ContactRepository struct {
	client API
	table  string
}

type contactItem struct {
	ID    int64  `dynamodbav:"id"`
	Name  string `dynamodbav:"name"`
	Email string `dynamodbav:"email"`
}

func NewContactRepository(client API, table string) *ContactRepository {
	return &ContactRepository{
		client: client,
		table:  table,
	}
}

// CreateContact stores c under a freshly issued id, or under c.ID when it
// is set, replacing any item with that id.
func (r *ContactRepository) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	if err := validateTable(r.table); err != nil {
		return contact.Contact{}, err
	}

	id := c.ID
	if id == 0 {
		next, err := r.nextID(ctx)
		if err != nil {
			return contact.Contact{}, err
		}
		id = next
	}

	item := contactItem{
		ID:    id,
		Name:  c.Name,
		Email: c.Email,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return contact.Contact{}, fmt.Errorf("dynamodb: marshal contact: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.table,
		Item:      av,
	})
	if err != nil {
		return contact.Contact{}, fmt.Errorf("dynamodb: put contact: %w", err)
	}

	return contact.Contact{ID: id, Name: c.Name, Email: c.Email}, nil
}

func (r *ContactRepository) AllContacts(ctx context.Context) ([]contact.Contact, error) {
	if err := validateTable(r.table); err != nil {
		return nil, err
	}

	contacts := []contact.Contact{}
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: &r.table,
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: scan contacts: %w", err)
		}

		var items []contactItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("dynamodb: unmarshal contacts: %w", err)
		}
		for _, item := range items {
			if item.ID == counterID {
				continue
			}
			contacts = append(contacts, contact.Contact{
				ID:    item.ID,
				Name:  item.Name,
				Email: item.Email,
			})
		}
	}

	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts, nil
}

// DeleteContact removes the item with target's id when its name and email
// still match. A missing or changed item counts as already deleted.
func (r *ContactRepository) DeleteContact(ctx context.Context, target contact.Contact, _ []contact.Contact) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &r.table,
		Key:                 idKey(target.ID),
		ConditionExpression: aws.String("#name = :name AND #email = :email"),
		ExpressionAttributeNames: map[string]string{
			"#name":  "name",
			"#email": "email",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":  &types.AttributeValueMemberS{Value: target.Name},
			":email": &types.AttributeValueMemberS{Value: target.Email},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil
		}
		return fmt.Errorf("dynamodb: delete contact: %w", err)
	}
	return nil
}

// nextID atomically increments the counter item and returns the new value.
func (r *ContactRepository) nextID(ctx context.Context) (int64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &r.table,
		Key:              idKey(counterID),
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("dynamodb: next contact id: %w", err)
	}

	seq, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("dynamodb: next contact id: counter missing from response")
	}
	id, err := strconv.ParseInt(seq.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dynamodb: next contact id: %w", err)
	}
	return id, nil
}

func idKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}
