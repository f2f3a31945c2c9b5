package lib

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fiffu/vitalwatch/config"
	"github.com/fiffu/vitalwatch/lib/models"
	"github.com/fiffu/vitalwatch/senders"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	t0             = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	errTestOutage  = errors.New("push provider unavailable")
	testDeviceID   = "ABC12345"
	testPushToken  = "ExponentPushToken[caregiver-7]"
	testElderName  = "Maria"
	testElderPhone = "011980028922"
)

// fakeClock is a settable time source shared by the service under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sentAlert struct {
	Token, Title, Body string
}

// fakeSender records deliveries and fails while err is set.
type fakeSender struct {
	mu    sync.Mutex
	sent  []sentAlert
	err   error
	delay time.Duration
}

func (f *fakeSender) Send(ctx context.Context, token, title, body string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentAlert{token, title, body})
	return "msg-1", nil
}

func (f *fakeSender) Sent() []sentAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentAlert(nil), f.sent...)
}

func (f *fakeSender) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type testEnv struct {
	svc    *Service
	db     *gorm.DB
	clock  *fakeClock
	sender *fakeSender
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Delivery.Timeout = time.Second

	db := newTestDB(t)
	clock := &fakeClock{now: t0}
	sender := &fakeSender{}
	registry := senders.Registry{
		senders.PlatformAndroid: sender,
		senders.PlatformIOS:     sender,
	}

	return &testEnv{
		svc:    newService(cfg, zap.NewNop(), db, registry, clock.Now),
		db:     db,
		clock:  clock,
		sender: sender,
	}
}

func (env *testEnv) createAccount(t *testing.T, name string, role models.Role) uint {
	t.Helper()

	account, err := env.svc.CreateAccount(context.Background(), name, testElderPhone, role)
	require.NoError(t, err)
	return account.ID
}

// pairedElder registers an elder's device, pairs it to a caregiver and gives the caregiver an
// endpoint that has never been notified.
func (env *testEnv) pairedElder(t *testing.T) (elderID, caregiverID uint) {
	t.Helper()
	ctx := context.Background()

	elderID = env.createAccount(t, testElderName, models.RoleElder)
	caregiverID = env.createAccount(t, "Joana", models.RoleCaregiver)

	_, err := env.svc.RegisterDevice(ctx, elderID, testDeviceID)
	require.NoError(t, err)
	_, err = env.svc.Pair(ctx, testDeviceID, caregiverID)
	require.NoError(t, err)
	require.NoError(t, env.svc.UpsertEndpoint(ctx, caregiverID, testPushToken, senders.PlatformAndroid, "15"))
	return elderID, caregiverID
}
