package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a(x) ;;")
	require.Equal(t, []string{"CREATE TABLE a (x INT);", "CREATE INDEX i ON a(x);"}, got)
}

func TestSchemasDefineEveryTable(t *testing.T) {
	for _, schema := range []string{schemaSQLite, schemaPostgres} {
		stmts := splitStatements(schema)
		for _, table := range Tables {
			found := false
			for _, stmt := range stmts {
				if firstLine(stmt) == "CREATE TABLE IF NOT EXISTS "+table+" (" {
					found = true
				}
			}
			require.True(t, found, table)
		}
	}
}
