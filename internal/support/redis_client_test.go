package support

import (
	"context"
	"testing"
)

func TestNewRedisClientRejectsInvalidURL(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "http://localhost:6379")
	if err == nil {
		_ = client.Close()
		t.Fatal("NewRedisClient returned nil error for a non-redis scheme")
	}
}
