package pg

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap/zaptest"
)

func lookUpDatabaseUrl() string {
	return os.Getenv("GO_BPMN_TEST_DATABASE_URL")
}

// mustCreateRecorder creates a recorder, using a new database schema. If no test database is configured, the test is
// skipped.
func mustCreateRecorder(t *testing.T, customizers ...func(*Options)) *Recorder {
	if testing.Short() {
		t.Skip()
	}

	databaseUrl := lookUpDatabaseUrl()
	if databaseUrl == "" {
		t.Skip("GO_BPMN_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseUrl)
	if err != nil {
		t.Fatalf("failed to establish database connection: %v", err)
	}

	defer conn.Close(ctx)

	databaseSchema := fmt.Sprintf("test_pg_%s", strings.Replace(time.Now().Format("20060102150405.000"), ".", "", 1))
	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", databaseSchema))
	if err != nil {
		t.Fatalf("failed to create database schema: %v", err)
	}

	databaseUrl = fmt.Sprintf("%s?search_path=%s", databaseUrl, databaseSchema)

	customizers = append([]func(*Options){func(o *Options) {
		o.Logger = zaptest.NewLogger(t)
	}}, customizers...)

	recorder, err := New(databaseUrl, customizers...)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}

	return recorder
}
