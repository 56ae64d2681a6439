package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	statements []string
	failOn     int
}

func (r *recordingExecer) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	r.statements = append(r.statements, query)
	if r.failOn > 0 && len(r.statements) == r.failOn {
		return nil, errors.New("permission denied")
	}
	return nil, nil
}

func TestApplySchemaIsIdempotentDDL(t *testing.T) {
	t.Parallel()

	exec := &recordingExecer{}
	require.NoError(t, applySchema(context.Background(), exec))
	require.Len(t, exec.statements, len(schema))

	for _, stmt := range exec.statements {
		assert.Regexp(t, `^CREATE (TABLE|INDEX) IF NOT EXISTS`, strings.TrimSpace(stmt))
	}
	assert.Regexp(t, `url\s+TEXT NOT NULL UNIQUE`, exec.statements[0])
}

func TestApplySchemaStopsOnError(t *testing.T) {
	t.Parallel()

	exec := &recordingExecer{failOn: 2}
	err := applySchema(context.Background(), exec)
	require.ErrorContains(t, err, "permission denied")
	assert.Len(t, exec.statements, 2)
}
