package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	stmts, err := splitStatements(`
-- trade log; append-only
CREATE TABLE a (x UInt64) ENGINE = MergeTree() ORDER BY x;

CREATE TABLE b (y String DEFAULT 'it''s') ENGINE = MergeTree() ORDER BY y;
`)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.NotContains(t, stmts[0], "append-only")
	assert.Contains(t, stmts[1], "'it''s'")
}

func TestSplitStatements_RejectsUnsplittableSQL(t *testing.T) {
	_, err := splitStatements(`INSERT INTO t VALUES ('a;b')`)
	assert.Error(t, err)

	_, err = splitStatements(`INSERT INTO t VALUES ('dangling`)
	assert.Error(t, err)
}

func TestSplitStatements_EmbeddedMigrationsSplitClean(t *testing.T) {
	data, err := ClickhouseFS.ReadFile("clickhouse/001_trade_events.sql")
	require.NoError(t, err)

	stmts, err := splitStatements(string(data))
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS trade_events")
}
