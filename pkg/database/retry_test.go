package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The connectors sleep RetryInterval between attempts without scaling it.
// A millisecond interval over a few failing attempts must finish in well
// under a second of pacing; these bound the elapsed time so any unit
// re-scaling of the interval turns into a loud timeout.

func TestMinIOConnectionRetryPacing(t *testing.T) {
	start := time.Now()
	_, err := NewMinIOConnection(MinIOConnection{
		Endpoint:      "not a valid endpoint",
		User:          "user",
		Password:      "password",
		BucketName:    "bucket",
		RetryCount:    3,
		RetryInterval: 10 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMongoConnectionRetryPacing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	_, err := NewMongoDB(ctx, Connection{
		ConnectStr:    "not-a-mongodb-uri",
		RetryCount:    3,
		RetryInterval: 10 * time.Millisecond,
	}, "inspections")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestKafkaWriterRetryPacing(t *testing.T) {
	start := time.Now()
	_, err := NewKafkaWriterWithRetry(KafkaConnection{
		Brokers:       []string{"127.0.0.1:1"},
		Topic:         "audit",
		RetryCount:    1,
		RetryInterval: 10 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Minute)
}
