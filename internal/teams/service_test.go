package teams

import (
	"errors"
	"path/filepath"
	"testing"

	"ivm-inventory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Team{}, &models.User{}, &models.Asset{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, svc *Service, p Params) *models.Team {
	t.Helper()

	team, err := svc.Create(p)
	if err != nil {
		t.Fatalf("create team %q failed: %v", p.Name, err)
	}
	return team
}

func TestCreateRejectsDuplicateNameUnderSameParent(t *testing.T) {
	svc := NewService(newTestDB(t))

	root := mustCreate(t, svc, Params{Name: "Security"})
	mustCreate(t, svc, Params{Name: "Blue Team", ParentTeamID: &root.ID, TeamType: models.TeamSub})

	_, err := svc.Create(Params{Name: "Blue Team", ParentTeamID: &root.ID})
	assert.ErrorIs(t, err, ErrDuplicateName)

	// то же имя под другим родителем — не конфликт
	other := mustCreate(t, svc, Params{Name: "Operations"})
	_, err = svc.Create(Params{Name: "Blue Team", ParentTeamID: &other.ID, TeamType: models.TeamSub})
	assert.NoError(t, err)
}

func TestCreateRejectsDuplicateRootName(t *testing.T) {
	svc := NewService(newTestDB(t))

	mustCreate(t, svc, Params{Name: "Security"})

	// NULL-родители не схлопываются СУБД в уникальном индексе,
	// поэтому одинаковые корни должна ловить проверка на уровне приложения
	_, err := svc.Create(Params{Name: "Security"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateRequiresExistingParent(t *testing.T) {
	svc := NewService(newTestDB(t))

	missing := uint(999)
	_, err := svc.Create(Params{Name: "Orphan", ParentTeamID: &missing})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUpdateRenameChecksSiblings(t *testing.T) {
	svc := NewService(newTestDB(t))

	root := mustCreate(t, svc, Params{Name: "Security"})
	mustCreate(t, svc, Params{Name: "Blue Team", ParentTeamID: &root.ID})
	red := mustCreate(t, svc, Params{Name: "Red Team", ParentTeamID: &root.ID})

	_, err := svc.Update(red.ID, Params{Name: "Blue Team", ParentTeamID: &root.ID})
	assert.ErrorIs(t, err, ErrDuplicateName)

	// переименование в собственное имя конфликтом не считается
	got, err := svc.Update(red.ID, Params{Name: "Red Team", ParentTeamID: &root.ID, Description: "offense"})
	require.NoError(t, err)
	assert.Equal(t, "offense", got.Description)
}

func TestUpdateRejectsCycles(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	a := mustCreate(t, svc, Params{Name: "A"})
	b := mustCreate(t, svc, Params{Name: "B", ParentTeamID: &a.ID})
	c := mustCreate(t, svc, Params{Name: "C", ParentTeamID: &b.ID})

	// сам себе родитель
	_, err := svc.Update(a.ID, Params{Name: "A", ParentTeamID: &a.ID})
	assert.ErrorIs(t, err, ErrCycle)

	// родитель — собственный потомок (через два уровня)
	_, err = svc.Update(a.ID, Params{Name: "A", ParentTeamID: &c.ID})
	assert.ErrorIs(t, err, ErrCycle)

	// перенос C под A — легален, цикла нет
	got, err := svc.Update(c.ID, Params{Name: "C", ParentTeamID: &a.ID})
	require.NoError(t, err)
	require.NotNil(t, got.ParentTeamID)
	assert.Equal(t, a.ID, *got.ParentTeamID)
}

func TestDeleteBlockedBySubTeams(t *testing.T) {
	svc := NewService(newTestDB(t))

	root := mustCreate(t, svc, Params{Name: "Security"})
	mustCreate(t, svc, Params{Name: "Blue Team", ParentTeamID: &root.ID})
	mustCreate(t, svc, Params{Name: "Red Team", ParentTeamID: &root.ID})

	err := svc.Delete(root.ID)
	require.Error(t, err)

	var pre *PreconditionError
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, root.ID, pre.TeamID)
	assert.ElementsMatch(t, []string{"Blue Team", "Red Team"}, pre.SubTeams)
	assert.Contains(t, pre.Error(), "Blue Team")

	// команда на месте
	_, err = svc.ByID(root.ID)
	assert.NoError(t, err)
}

func TestDeleteBlockedByAssetsAndUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	team := mustCreate(t, svc, Params{Name: "Security"})

	require.NoError(t, db.Create(&models.Asset{Name: "web-01", IPAddress: "10.0.0.1", TeamID: team.ID}).Error)
	require.NoError(t, db.Create(&models.Asset{Name: "web-02", IPAddress: "10.0.0.2", TeamID: team.ID}).Error)
	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", TeamID: &team.ID}).Error)

	err := svc.Delete(team.ID)
	require.Error(t, err)

	var pre *PreconditionError
	require.True(t, errors.As(err, &pre))
	assert.Empty(t, pre.SubTeams)
	assert.Equal(t, int64(2), pre.AssetCount)
	assert.Equal(t, int64(1), pre.UserCount)
	assert.Contains(t, pre.Error(), "2 assets")
	assert.Contains(t, pre.Error(), "1 users")
}

func TestDeleteUnreferencedTeam(t *testing.T) {
	svc := NewService(newTestDB(t))

	root := mustCreate(t, svc, Params{Name: "Security"})
	sub := mustCreate(t, svc, Params{Name: "Blue Team", ParentTeamID: &root.ID})

	require.NoError(t, svc.Delete(sub.ID))

	_, err := svc.ByID(sub.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	// после ухода последней подкоманды удаляется и корень
	require.NoError(t, svc.Delete(root.ID))
}

func TestDeleteMissingTeam(t *testing.T) {
	svc := NewService(newTestDB(t))
	err := svc.Delete(12345)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestHierarchyIsOneLevelDeep(t *testing.T) {
	svc := NewService(newTestDB(t))

	root := mustCreate(t, svc, Params{Name: "Security"})
	blue := mustCreate(t, svc, Params{Name: "Blue Team", ParentTeamID: &root.ID})
	mustCreate(t, svc, Params{Name: "Red Team", ParentTeamID: &root.ID})
	mustCreate(t, svc, Params{Name: "SOC L1", ParentTeamID: &blue.ID})

	h, err := svc.Hierarchy(root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, h.Team.ID)
	require.Len(t, h.SubTeams, 2)

	// внуки в выдачу не попадают
	for _, sub := range h.SubTeams {
		assert.NotEqual(t, "SOC L1", sub.Name)
	}
}

func TestMainTeamsExcludesSubTeams(t *testing.T) {
	svc := NewService(newTestDB(t))

	root := mustCreate(t, svc, Params{Name: "Security"})
	mustCreate(t, svc, Params{Name: "Operations"})
	mustCreate(t, svc, Params{Name: "Blue Team", ParentTeamID: &root.ID})

	mains, err := svc.MainTeams()
	require.NoError(t, err)
	require.Len(t, mains, 2)
	for _, m := range mains {
		assert.Nil(t, m.ParentTeamID)
	}

	subs, err := svc.SubTeams(root.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Blue Team", subs[0].Name)
}
