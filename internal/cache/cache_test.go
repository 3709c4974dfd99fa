package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_NilIsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)

	n, err := c.Incr(ctx, "k", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestClient_UnreachableBehavesLikeMiss(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	n, err := c.GetInt(ctx, "login_fail:alice")
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Incr(ctx, "login_fail:alice", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, c.Delete(ctx, "login_fail:alice"))
}

func TestClient_IncrSetsTTLInSameTransaction(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := &Client{client: db}
	ctx := context.Background()

	mock.ExpectTxPipeline()
	mock.ExpectIncr("login_fail:alice").SetVal(1)
	mock.ExpectExpireNX("login_fail:alice", time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()

	mock.ExpectTxPipeline()
	mock.ExpectIncr("login_fail:alice").SetVal(2)
	mock.ExpectExpireNX("login_fail:alice", time.Minute).SetVal(false)
	mock.ExpectTxPipelineExec()

	n, err := c.Incr(ctx, "login_fail:alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "login_fail:alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_IncrFailedTransactionYieldsZero(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := &Client{client: db}

	mock.ExpectTxPipeline()
	mock.ExpectIncr("login_fail:alice").SetVal(1)
	mock.ExpectExpireNX("login_fail:alice", time.Minute).SetErr(errors.New("READONLY"))
	mock.ExpectTxPipelineExec()

	n, err := c.Incr(context.Background(), "login_fail:alice", time.Minute)

	assert.NoError(t, err)
	assert.Zero(t, n)
}
