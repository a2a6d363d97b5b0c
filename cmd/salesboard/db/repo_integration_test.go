package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/service"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "sales",
				"POSTGRES_PASSWORD": "sales",
				"POSTGRES_DB":       "salesboard",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := postgres.Host(ctx)
	require.NoError(t, err)
	port, err := postgres.MappedPort(ctx, "5432")
	require.NoError(t, err)
	uri := fmt.Sprintf("postgres://sales:sales@%s:%s/salesboard?sslmode=disable", host, port.Port())

	require.NoError(t, Migrate(uri))
	require.NoError(t, Migrate(uri), "second run must be a no-op")

	conn, err := Init(uri, 5, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func ptr(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSalesAggregates(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	repo := NewSalesRepoPG(conn)

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Orders)
	assert.True(t, summary.Total.IsZero())
	assert.Nil(t, summary.MinDate)

	require.NoError(t, repo.InsertSales(ctx, []models.Sale{
		{
			OrderID: "A-1", OrderDate: day("2022-04-01"), Status: ptr("Shipped"), Category: ptr("Set"),
			Qty: 2, Currency: "INR", Amount: decimal.RequireFromString("1000.00"),
			ShipCity: ptr("Mumbai"), ShipState: ptr("Maharashtra"), ShipCountry: ptr("India"),
		},
		{
			OrderID: "A-2", OrderDate: day("2022-04-02"), Category: ptr(""),
			Qty: 1, Currency: "INR", Amount: decimal.RequireFromString("500.00"),
			ShipCity: ptr("Bangalore"), ShipState: ptr("Karnataka"), ShipCountry: ptr("India"),
		},
	}))

	summary, err = repo.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Orders)
	assert.Equal(t, "1500.00", summary.Total.StringFixed(2))
	require.NotNil(t, summary.MinDate)
	require.NotNil(t, summary.MaxDate)
	assert.Equal(t, "2022-04-01", summary.MinDate.Format(models.DateLayout))
	assert.Equal(t, "2022-04-02", summary.MaxDate.Format(models.DateLayout))

	kpi, err := repo.KPI(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, kpi.Quantity)

	states, err := repo.TotalsByRegion(ctx, models.RegionState)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "Maharashtra", *states[0].Region)

	countries, err := repo.TotalsByRegion(ctx, models.RegionCountry)
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "India", *countries[0].Region)
	assert.EqualValues(t, 2, countries[0].Orders)
	assert.Equal(t, "1500.00", countries[0].Total.StringFixed(2))

	_, err = repo.TotalsByRegion(ctx, models.RegionLevel("planet"))
	assert.ErrorIs(t, err, ErrUnknownLevel)

	top, err := repo.TopCities(ctx, models.TopCitiesFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Mumbai", *top[0].City)
	assert.Equal(t, "Maharashtra", *top[0].State)

	topCity := func(f models.TopCitiesFilter) []string {
		t.Helper()
		got, err := repo.TopCities(ctx, f)
		require.NoError(t, err)
		cities := make([]string, 0, len(got))
		for _, c := range got {
			cities = append(cities, *c.City)
		}
		return cities
	}
	first, second := day("2022-04-01"), day("2022-04-02")
	before, after := day("2022-03-31"), day("2022-04-03")

	assert.Equal(t, []string{"Bangalore"}, topCity(models.TopCitiesFilter{Limit: 10, StartDate: &second}))
	assert.Equal(t, []string{"Mumbai"}, topCity(models.TopCitiesFilter{Limit: 10, EndDate: &first}))
	assert.Equal(t, []string{"Mumbai"}, topCity(models.TopCitiesFilter{Limit: 10, StartDate: &first, EndDate: &first}))
	assert.Equal(t, []string{"Bangalore"}, topCity(models.TopCitiesFilter{Limit: 10, StartDate: &second, EndDate: &second}))
	assert.Equal(t, []string{"Mumbai", "Bangalore"}, topCity(models.TopCitiesFilter{Limit: 10, StartDate: &first, EndDate: &second}))
	assert.Empty(t, topCity(models.TopCitiesFilter{Limit: 10, EndDate: &before}))
	assert.Empty(t, topCity(models.TopCitiesFilter{Limit: 10, StartDate: &after}))

	cats, err := repo.TotalsByCategory(ctx, "Unknown")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.ElementsMatch(t, []string{"Set", "Unknown"}, []string{cats[0].Key, cats[1].Key})

	statuses, err := repo.CountsByStatus(ctx, "Unknown")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.ElementsMatch(t, []string{"Shipped", "Unknown"}, []string{statuses[0].Key, statuses[1].Key})

	trend, err := repo.TotalsByDate(ctx)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.True(t, trend[0].Date.Before(trend[1].Date))

	total, err := repo.CountSales(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	page, err := repo.ListSales(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "A-2", page[0].OrderID)
	assert.Nil(t, page[0].Status)
}

func TestUserAndUploadLogRepos(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepoPG(conn)
	logs := NewUploadLogRepoPG(conn)

	u := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.True(t, u.IsActive)

	err := users.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "hash"})
	assert.ErrorIs(t, err, service.ErrUserExists)

	exists, err := users.IsUsernameExist(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = users.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	require.NoError(t, logs.CreateUploadLog(ctx, "first.csv", 10, u.ID))
	require.NoError(t, logs.CreateUploadLog(ctx, "second.csv", 20, u.ID))

	list, err := logs.ListUploadLogs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second.csv", list[0].FileName)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, 10, list[1].RowCount)
}

func TestInsertSalesIsAtomic(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	repo := NewSalesRepoPG(conn)

	err := repo.InsertSales(ctx, []models.Sale{
		{OrderID: "ok", OrderDate: day("2022-04-01"), Qty: 1, Currency: "INR", Amount: decimal.NewFromInt(1)},
		{OrderID: "this-order-id-is-far-too-long-for-the-fifty-char-column-limit", OrderDate: day("2022-04-01"),
			Qty: 1, Currency: "INR", Amount: decimal.NewFromInt(1)},
	})
	require.Error(t, err)

	total, err := repo.CountSales(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgres://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("pgx5://u:p@h/db"))
}
