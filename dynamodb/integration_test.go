package dynamodb_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"contactbook/contact"
	ddb "contactbook/dynamodb"
)

const dynamoPort = nat.Port("8000/tcp")

func TestContactRepository_DynamoDBLocal(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	ctx := context.Background()
	client, err := ddb.NewClient(ctx, ddb.Options{
		Region:    "us-east-1",
		Endpoint:  SetupDynamoDBContainer(t),
		AccessKey: "local",
		SecretKey: "local",
	})
	require.NoError(t, err)

	table := "contacts_test"
	require.NoError(t, ddb.CreateContactsTable(ctx, client, table))
	require.NoError(t, ddb.CreateContactsTable(ctx, client, table), "creating twice is allowed")

	repo := ddb.NewContactRepository(client, table)

	t.Run("issues increasing ids and lists in id order", func(t *testing.T) {
		alice, err := repo.CreateContact(ctx, contact.Contact{Name: "Alice", Email: "alice@example.com"})
		require.NoError(t, err)
		bob, err := repo.CreateContact(ctx, contact.Contact{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)

		assert.Greater(t, bob.ID, alice.ID)
		contacts, err := repo.AllContacts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{alice, bob}, contacts)
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		contacts, err := repo.AllContacts(ctx)
		require.NoError(t, err)
		last := contacts[len(contacts)-1]

		require.NoError(t, repo.DeleteContact(ctx, last, contacts[:len(contacts)-1]))
		next, err := repo.CreateContact(ctx, contact.Contact{Name: "Carol", Email: "carol@example.com"})
		require.NoError(t, err)

		assert.Greater(t, next.ID, last.ID)
	})

	t.Run("deleting an absent item succeeds", func(t *testing.T) {
		err := repo.DeleteContact(ctx, contact.Contact{ID: 999, Name: "Ghost", Email: "ghost@example.com"}, nil)

		assert.NoError(t, err)
	})
}

func SetupDynamoDBContainer(t testing.TB) string {
	ctx := context.Background()
	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{string(dynamoPort)},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort(dynamoPort).WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, cont.Terminate(ctx))
	})

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, dynamoPort)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}
