package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a ClickHouse container and returns a connection.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	createArchiveTable(t, conn)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

// createArchiveTable applies the archive schema inline. The embedded
// migration package cannot be imported here without a cycle.
func createArchiveTable(t *testing.T, conn *Conn) {
	t.Helper()

	err := conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS token_performance_archive (
			token_address         String,
			symbol                String,
			price_change_24h      Float64,
			volume_change_24h     Float64,
			trade_change_24h      Float64,
			liquidity_change_24h  Float64,
			holder_change_24h     Float64,
			liquidity             Float64,
			market_cap_change_24h Float64,
			rug_pull              Bool,
			is_scam               Bool,
			sustained_growth      Bool,
			rapid_dump            Bool,
			suspicious_volume     Bool,
			validation_trust      Float64,
			balance               Float64,
			initial_market_cap    Float64,
			last_updated          UInt64
		) ENGINE = ReplacingMergeTree()
		ORDER BY (token_address, last_updated)
	`)
	require.NoError(t, err)
}
