package db

import (
	"testing"

	"agent-hub/confs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNFromURL(t *testing.T) {
	dsn, err := DSN(confs.DB{URL: "postgres://u:p@host/agents"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@host/agents?sslmode=require", dsn)

	dsn, err = DSN(confs.DB{URL: "postgres://u:p@host/agents?application_name=hub"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@host/agents?application_name=hub&sslmode=require", dsn)

	dsn, err = DSN(confs.DB{URL: "postgres://u:p@host/agents?sslmode=disable"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@host/agents?sslmode=disable", dsn)
}

func TestDSNFromFields(t *testing.T) {
	dsn, err := DSN(confs.DB{Host: "localhost", Port: "5432", User: "hub", Password: "pw", Name: "agents"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "sslmode=disable")

	dsn, err = DSN(confs.DB{Host: "db.example.com", Port: "5432", User: "hub", Password: "pw", Name: "agents"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "sslmode=require")
}

func TestDSNMissingFields(t *testing.T) {
	_, err := DSN(confs.DB{Host: "localhost"})
	assert.Error(t, err)
}
