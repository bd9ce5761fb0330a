package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"offline-llm-chat/models"
)

// newTestRepo connects to the MongoDB named by MONGO_TEST_URI and hands back
// a repository over a per-run database that is dropped on cleanup. Tests are
// skipped when the variable is unset.
func newTestRepo(t *testing.T) *ConversationRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("chat_test_" + time.Now().Format("20060102150405"))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return NewConversationRepository(db)
}

func TestCreateGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultTitle, created.Title)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.NotNil(t, got.History)
	assert.Empty(t, got.History)
}

func TestGetUnknownID(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendMessageOrderAndTitle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, err := repo.Create(ctx, "")
	require.NoError(t, err)

	_, err = repo.AppendMessage(ctx, conv.ID, models.RoleUser, "What is the capital of France, and why is it famous?")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, conv.ID, models.RoleAssistant, "Paris.")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, conv.ID, models.RoleUser, "Thanks!")
	require.NoError(t, err)

	got, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 3)
	assert.Equal(t, models.RoleUser, got.History[0].Role)
	assert.Equal(t, models.RoleAssistant, got.History[1].Role)
	assert.Equal(t, "Thanks!", got.History[2].Content)

	// the title comes from the first user message only
	assert.Equal(t, models.DeriveTitle("What is the capital of France, and why is it famous?"), got.Title)
}

func TestAppendMessageUnknownID(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AppendMessage(context.Background(), "no-such-id", models.RoleUser, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, err := repo.Create(ctx, "")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, conv.ID, models.RoleUser, "hello")
	require.NoError(t, err)

	require.NoError(t, repo.ClearHistory(ctx, conv.ID))

	got, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, got.History)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv, err := repo.Create(ctx, "")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, conv.ID))
	_, err = repo.Get(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, conv.ID))
}

func TestListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "")
	require.NoError(t, err)
	second, err := repo.Create(ctx, "")
	require.NoError(t, err)

	// touching the older conversation moves it to the front
	time.Sleep(5 * time.Millisecond)
	_, err = repo.AppendMessage(ctx, first.ID, models.RoleUser, "bump")
	require.NoError(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}
