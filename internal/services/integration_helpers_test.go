package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/email"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/events"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ScheduleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.ScheduleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.SendRequest
	err  error
}

func (m *recordingMailer) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	return email.SendResult{MessageID: fmt.Sprintf("test-%d", len(m.sent)), SentAt: time.Now()}, nil
}

func createTestAccount(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string) *models.User {
	t.Helper()

	hash := "test-hash"
	user := &models.User{
		Email:        fmt.Sprintf("schedule-test-%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: &hash,
		Name:         "Test " + role,
		Role:         role,
		IsActive:     true,
	}
	if err := repository.NewUserRepository(pool).CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", role, err)
	}
	return user
}

func linkTestClient(t *testing.T, ctx context.Context, pool *pgxpool.Pool, coachID, clientID int64, status string) *models.ClientRelationship {
	t.Helper()

	rel, err := repository.NewClientRelationshipRepository(pool).Create(ctx, repository.CreateRelationshipInput{
		CoachID:     coachID,
		ClientID:    clientID,
		Status:      status,
		InviteToken: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("create relationship: %v", err)
	}
	return rel
}

// cleanupTestUsers relies on ON DELETE CASCADE for schedule rows.
func cleanupTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}
