package services

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/dbx"
	"github.com/IscoRuta98/ArdhiHub-server/internal/ledger"
	"github.com/IscoRuta98/ArdhiHub-server/internal/logging"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
	recordsrepo "github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/records"
	refreshtokensrepo "github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/refreshtokens"
	usersrepo "github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/users"
)

// --- shared helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// --- users repository fake ---

type fakeUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	createErr error
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = "user-" + u.Username
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

// --- records repository fake ---

type fakeRecordsRepo struct {
	mu      sync.Mutex
	records map[string]*models.Record
}

func newFakeRecordsRepo(records ...*models.Record) *fakeRecordsRepo {
	f := &fakeRecordsRepo{records: make(map[string]*models.Record)}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeRecordsRepo) Create(ctx context.Context, r *models.Record) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = "record-" + r.UserID
	r.CreatedAt = time.Now()
	f.records[r.ID] = r
	return r, nil
}

func (f *fakeRecordsRepo) GetByID(ctx context.Context, id string) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeRecordsRepo) FindByOwner(ctx context.Context, userID string) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeRecordsRepo) ListUnverified(ctx context.Context) ([]*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Record
	for _, r := range f.records {
		if !r.Verified {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRecordsRepo) MarkIssued(ctx context.Context, id string, assetID uint64, txID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.Verified {
		return common.ErrStateConflict
	}
	r.Verified = true
	r.AssetID = assetID
	r.TransactionID = txID
	return nil
}

func (f *fakeRecordsRepo) MarkRevoked(ctx context.Context, id string, txID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || !r.Verified || r.Revoked {
		return common.ErrStateConflict
	}
	r.Revoked = true
	r.RevokeTransactionID = txID
	return nil
}

// --- refresh tokens repository fake ---

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr error

	createErr error
	created   int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	return f.delErr
}

// --- repository manager fake ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRecordsRepo
	t *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository               { return m.u }
func (m *fakeRepoManager) Records(db dbx.DBTX) recordsrepo.Repository           { return m.r }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.t }

// --- vault fake ---

type fakeVault struct {
	decryptErr error
}

func (v *fakeVault) Encrypt(plaintext []byte) ([]byte, error) {
	return append([]byte("sealed:"), plaintext...), nil
}

func (v *fakeVault) Decrypt(blob []byte) ([]byte, error) {
	if v.decryptErr != nil {
		return nil, v.decryptErr
	}
	return append([]byte(nil), blob[len("sealed:"):]...), nil
}

// --- ledger fake ---

type submitResult struct {
	conf *ledger.Confirmation
	err  error
}

type fakeLedger struct {
	mu      sync.Mutex
	results []submitResult

	paramsCalls int
	submitted   []types.Transaction
}

func (f *fakeLedger) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paramsCalls++
	return types.SuggestedParams{
		Fee:             1000,
		FlatFee:         true,
		FirstRoundValid: 1,
		LastRoundValid:  1001,
		GenesisHash:     make([]byte, 32),
	}, nil
}

func (f *fakeLedger) SubmitAndConfirm(ctx context.Context, txn types.Transaction, privateKey ed25519.PrivateKey) (*ledger.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, txn)
	if len(f.results) == 0 {
		return nil, common.ErrSubmission
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res.conf, res.err
}

func (f *fakeLedger) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

func (f *fakeLedger) ledgerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paramsCalls + len(f.submitted)
}
