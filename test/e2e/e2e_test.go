// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-advisor/internal/common/camunda"
	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/database"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/vectorstore"
	"solar-advisor/internal/login"
	"solar-advisor/internal/models"
	"solar-advisor/internal/proposals"
)

// These tests need the docker-compose stack. Set E2E=1 to run them.
func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run against real services")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	return cfg
}

func TestServicesConnectivity(t *testing.T) {
	cfg := loadConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	assert.NoError(t, database.WaitFor(ctx, pg, 3, time.Second, 5*time.Second), "postgres")

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	assert.NoError(t, database.WaitFor(ctx, rdb, 3, time.Second, 5*time.Second), "redis")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	assert.NoError(t, database.WaitFor(ctx, es, 3, time.Second, 5*time.Second), "elasticsearch")

	if cfg.Camunda.Enabled {
		zeebe, err := camunda.Connect(ctx, cfg.Camunda, 3, logger.NewTestLogger(t))
		require.NoError(t, err, "zeebe")
		zeebe.Close()
	}
}

func TestProposalsLifecycle(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()

	store := proposals.NewStore(pg.DB, logger.NewTestLogger(t))
	require.NoError(t, store.EnsureSchema(ctx))

	cost := 185000.0
	created, err := store.Create(ctx, models.ProposalCreate{
		CustomerName:  "E2E Customer",
		Email:         "e2e@example.com",
		SystemType:    "Solarmax Flat Plate 200L Indirect",
		EstimatedCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pending", created.Status)
	defer store.Delete(ctx, created.ID)

	status := "Approved"
	updated, err := store.Update(ctx, created.ID, models.ProposalUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Approved", updated.Status)
	assert.Equal(t, "E2E Customer", updated.CustomerName)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Status, got.Status)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.Error(t, err)
}

func TestVerificationCodes(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()

	codes := login.NewCodeStore(rdb.Client, 5*time.Second)
	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())

	require.NoError(t, codes.Save(ctx, email, "4821"))

	ok, err := codes.Consume(ctx, email, "0000")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = codes.Consume(ctx, email, "4821")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = codes.Consume(ctx, email, "4821")
	require.NoError(t, err)
	assert.False(t, ok, "codes are single use")
}

func TestVectorStore(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)

	index := fmt.Sprintf("e2e_products_%d", time.Now().UnixNano())
	store := vectorstore.NewStore(es.Client, index, 3)
	defer es.Client.Indices.Delete([]string{index})

	created, err := store.EnsureIndex(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, store.BulkIndex(ctx, []vectorstore.Document{
		{ID: "SMF200D", SystemName: "Solarmax Flat Plate 200L Direct", ModelCode: "SMF200D", Text: "direct", Embedding: []float32{1, 0, 0}},
		{ID: "SMF200I", SystemName: "Solarmax Flat Plate 200L Indirect", ModelCode: "SMF200I", Text: "indirect", Embedding: []float32{0, 1, 0}},
	}))

	matches, err := store.Search(ctx, []float32{0.1, 0.9, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "SMF200I", matches[0].ID)
	assert.Equal(t, "indirect", matches[0].Text())
}
