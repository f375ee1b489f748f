//go:build integration

// Package testinfra starts the backing services integration tests run against.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage = "postgres:16-alpine"
	RabbitMQImage = "rabbitmq:3-alpine"
	RedisImage    = "redis:7-alpine"

	startTimeout = 90 * time.Second
)

// SkipIfNoDocker skips the test when no Docker daemon answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// start runs req and returns host:port for port. The container is
// terminated when t finishes.
func start(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	SkipIfNoDocker(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("mapped port %s: %v", port, err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// StartPostgres returns a DSN for an empty database.
func StartPostgres(t *testing.T) string {
	t.Helper()
	addr := start(t, testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "adsadmin",
			"POSTGRES_PASSWORD": "adsadmin",
			"POSTGRES_DB":       "adsadmin",
			"TZ":                "UTC",
		},
		// the entrypoint restarts the server once after init
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(startTimeout),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://adsadmin:adsadmin@%s/adsadmin?sslmode=disable", addr)
}

// StartRabbitMQ returns an AMQP URL for the default vhost.
func StartRabbitMQ(t *testing.T) string {
	t.Helper()
	addr := start(t, testcontainers.ContainerRequest{
		Image:        RabbitMQImage,
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5672/tcp"),
			wait.ForLog("Server startup complete"),
		).WithStartupTimeout(startTimeout),
	}, "5672/tcp")
	return fmt.Sprintf("amqp://guest:guest@%s/", addr)
}

// StartRedis returns host:port of a fresh Redis server.
func StartRedis(t *testing.T) string {
	t.Helper()
	return start(t, testcontainers.ContainerRequest{
		Image:        RedisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithStartupTimeout(startTimeout),
	}, "6379/tcp")
}
