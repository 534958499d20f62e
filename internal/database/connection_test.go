package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), Config{URL: "postgres://%zz"})
	assert.ErrorContains(t, err, "failed to parse database config")
}

func TestRollbackMigrations_RejectsZeroSteps(t *testing.T) {
	err := RollbackMigrations("postgres://localhost/lexcorpus", DefaultMigrationsDir, 0)
	assert.ErrorContains(t, err, "steps must be at least 1")
}
