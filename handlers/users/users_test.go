package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"friendsmarket/migration"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenTestDB()
	require.NoError(t, err)
	require.NoError(t, migration.MigrateDB(db))
	return db
}

func TestCreateUser_GrantsStartingBalanceWithLedgerEntry(t *testing.T) {
	db := testDB(t)
	cfg := setup.Defaults()

	user, err := CreateUser(db, cfg, CreateUserRequest{Name: "alice", Password: "hunter22"})
	require.NoError(t, err)

	assert.Equal(t, cfg.Economics.StartingBalance, user.Balance)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))

	var entry models.LedgerEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	assert.Equal(t, models.LedgerStartingBalance, entry.EntryType)
	assert.Equal(t, cfg.Economics.StartingBalance, entry.Amount)
	assert.Nil(t, entry.MarketID)
}

func TestCreateUser_RejectsInvalidInput(t *testing.T) {
	db := testDB(t)
	cfg := setup.Defaults()

	_, err := CreateUser(db, cfg, CreateUserRequest{Name: "a", Password: "hunter22"})
	assert.Error(t, err)
	_, err = CreateUser(db, cfg, CreateUserRequest{Name: "alice", Password: "pw"})
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count, "rejected requests must not create rows")
}

func TestCreateUser_RejectsDuplicateName(t *testing.T) {
	db := testDB(t)
	cfg := setup.Defaults()

	_, err := CreateUser(db, cfg, CreateUserRequest{Name: "alice", Password: "hunter22"})
	require.NoError(t, err)
	_, err = CreateUser(db, cfg, CreateUserRequest{Name: "alice", Password: "other-pw"})
	assert.Error(t, err)
}

func TestDeposit_CreditsBalanceAndLedger(t *testing.T) {
	db := testDB(t)
	cfg := setup.Defaults()

	user, err := CreateUser(db, cfg, CreateUserRequest{Name: "alice", Password: "hunter22"})
	require.NoError(t, err)

	topped, err := Deposit(db, user.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, cfg.Economics.StartingBalance+25, topped.Balance)

	var entries []models.LedgerEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, 25.0, entries[1].Amount)
	assert.Equal(t, "Manual top-up", entries[1].Note)

	sum := 0.0
	for _, e := range entries {
		sum += e.Amount
	}
	assert.InDelta(t, topped.Balance, sum, 1e-9)
}

func TestUserToPublic_HidesCredentials(t *testing.T) {
	user := models.User{Name: "alice", PasswordHash: "secret", Balance: 50}
	public := user.ToPublic()
	assert.Equal(t, "alice", public.Name)
	assert.Equal(t, 50.0, public.Balance)
}
