package revocation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRevocationAgainstRealRedis runs the denylist against a containerised
// redis. Guarded behind an env var so the suite stays green without docker.
func TestRevocationAgainstRealRedis(t *testing.T) {
	if os.Getenv("FLEET_INTEGRATION") == "" {
		t.Skip("set FLEET_INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewStore(rdb)
	require.NoError(t, s.Ping(ctx))

	token := "integration-refresh-token"
	require.NoError(t, s.Revoke(ctx, token, time.Now().Add(time.Minute)))
	require.True(t, s.IsRevoked(ctx, token))

	require.NoError(t, s.RevokeJTI(ctx, "integration-jti", time.Minute))
	require.True(t, s.IsJTIRevoked(ctx, "integration-jti"))
}
