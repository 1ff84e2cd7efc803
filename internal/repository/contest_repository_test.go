package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"contesthub/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return gdb, mock
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
}

func TestContestRepository_CountByCreator(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewContestRepository(gdb)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests` WHERE creator_email = \\?").
		WithArgs("c@x.com").
		WillReturnRows(countRows(2))

	n, err := repo.CountByCreator(context.Background(), "c@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContestRepository_FindByID(t *testing.T) {
	t.Run("loads submissions and participants", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)
		now := time.Now()

		mock.ExpectQuery("SELECT \\* FROM `contests` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "creator_email", "status", "price"}).
				AddRow("c1", "Logo", "c@x.com", "confirmed", "10.50"))
		mock.ExpectQuery("SELECT \\* FROM `submissions` WHERE `submissions`.`contest_id` = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id", "contest_id", "email", "submission", "submitted_at", "status"}).
				AddRow("s1", "c1", "u@x.com", "https://entry", now, ""))
		mock.ExpectQuery("SELECT \\* FROM `participants` WHERE contest_id IN \\(\\?\\)").
			WillReturnRows(sqlmock.NewRows([]string{"contest_id", "email", "joined_at"}).
				AddRow("c1", "u@x.com", now))

		c, err := repo.FindByID(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, "Logo", c.Title)
		assert.Equal(t, "10.5", c.Price.String())
		assert.Equal(t, []string{"u@x.com"}, c.Participants)
		require.Len(t, c.Submissions, 1)
		assert.Equal(t, "https://entry", c.Submissions[0].Submission)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing contest", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectQuery("SELECT \\* FROM `contests` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContestRepository_ListFilters(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewContestRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `contests` WHERE category = \\? AND \\(LOWER\\(title\\) LIKE \\? ESCAPE '!' OR LOWER\\(category\\) LIKE \\? ESCAPE '!' OR LOWER\\(description\\) LIKE \\? ESCAPE '!'\\) AND id IN \\(SELECT contest_id FROM `participants` WHERE email = \\?\\) ORDER BY created_at DESC").
		WithArgs("Design", "%logo%", "%logo%", "%logo%", "u@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("c1", "Logo"))
	mock.ExpectQuery("SELECT \\* FROM `submissions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "contest_id"}))
	mock.ExpectQuery("SELECT \\* FROM `participants` WHERE contest_id IN").
		WillReturnRows(sqlmock.NewRows([]string{"contest_id", "email", "joined_at"}).AddRow("c1", "u@x.com", time.Now()))

	contests, err := repo.List(context.Background(), model.ContestFilter{
		Category:    "Design",
		Search:      "LOGO",
		Participant: "u@x.com",
	})
	require.NoError(t, err)
	require.Len(t, contests, 1)
	assert.Equal(t, []string{"u@x.com"}, contests[0].Participants)
	assert.NotNil(t, contests[0].Submissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContestRepository_ListSearchIsLiteral(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewContestRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `contests` WHERE .?LOWER\\(title\\) LIKE \\? ESCAPE '!'").
		WithArgs("%50!% off!_now!!%", "%50!% off!_now!!%", "%50!% off!_now!!%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	contests, err := repo.List(context.Background(), model.ContestFilter{Search: "50% OFF_now!"})
	require.NoError(t, err)
	assert.Empty(t, contests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%logo%", containsPattern("Logo"))
	assert.Equal(t, "%a!_b%", containsPattern("a_b"))
	assert.Equal(t, "%100!%%", containsPattern("100%"))
	assert.Equal(t, "%wow!!%", containsPattern("wow!"))
}

func TestContestRepository_ReplaceContent(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		exists   int
		wantErr  error
	}{
		{name: "pending and owned", affected: 1},
		{name: "decided or reassigned since load", affected: 0, exists: 1, wantErr: ErrConflict},
		{name: "missing contest", affected: 0, exists: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			repo := NewContestRepository(gdb)

			mock.ExpectExec("UPDATE `contests` SET .* WHERE id = \\? AND status = \\? AND creator_email = \\?").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.affected == 0 {
				mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests` WHERE id = \\?").
					WillReturnRows(countRows(tt.exists))
			}

			err := repo.ReplaceContent(context.Background(), &model.Contest{ID: "c1", Title: "Edited", CreatorEmail: "c@x.com"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestContestRepository_TransitionStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		exists   int
		wantErr  error
	}{
		{name: "pending to confirmed", affected: 1},
		{name: "already decided", affected: 0, exists: 1, wantErr: ErrConflict},
		{name: "missing contest", affected: 0, exists: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			repo := NewContestRepository(gdb)

			mock.ExpectExec("UPDATE `contests` SET .* WHERE id = \\? AND status = \\?").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.affected == 0 {
				mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests` WHERE id = \\?").
					WillReturnRows(countRows(tt.exists))
			}

			err := repo.TransitionStatus(context.Background(), "c1", model.ContestStatusPending, model.ContestStatusConfirmed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestContestRepository_ApplyPatch(t *testing.T) {
	t.Run("writes only supplied columns", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)
		title := "New title"

		mock.ExpectExec("UPDATE `contests` SET `title`=\\?,`updated_at`=\\? WHERE id = \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ApplyPatch(context.Background(), "c1", model.ContestPatch{Title: &title})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch only checks existence", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests`").WillReturnRows(countRows(0))

		err := repo.ApplyPatch(context.Background(), "c1", model.ContestPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContestRepository_AddParticipant(t *testing.T) {
	t.Run("inserts row", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests`").WillReturnRows(countRows(1))
		mock.ExpectExec("INSERT INTO `participants`").
			WithArgs("c1", "u@x.com", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.AddParticipant(context.Background(), "c1", "u@x.com"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate key", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests`").WillReturnRows(countRows(1))
		mock.ExpectExec("INSERT INTO `participants`").
			WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()

		err := repo.AddParticipant(context.Background(), "c1", "u@x.com")
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing contest", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests`").WillReturnRows(countRows(0))
		mock.ExpectRollback()

		err := repo.AddParticipant(context.Background(), "c1", "u@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContestRepository_AddSubmission(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewContestRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `contests`").WillReturnRows(countRows(1))
	mock.ExpectExec("INSERT INTO `submissions`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub := &model.Submission{Email: "u@x.com", Submission: "link", SubmittedAt: time.Now()}
	require.NoError(t, repo.AddSubmission(context.Background(), "c1", sub))
	assert.Equal(t, "c1", sub.ContestID)
	assert.NotEmpty(t, sub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContestRepository_DeclareWinner(t *testing.T) {
	t.Run("flags every submission of the winner", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT `id` FROM `contests` WHERE id = \\?.*FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `submissions` WHERE contest_id = \\? AND status = \\?").
			WillReturnRows(countRows(0))
		mock.ExpectExec("UPDATE `submissions` SET `status`=\\? WHERE contest_id = \\? AND email = \\?").
			WithArgs("winner", "c1", "u@x.com").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		n, err := repo.DeclareWinner(context.Background(), "c1", "u@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("winner already declared", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT `id` FROM `contests`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `submissions`").WillReturnRows(countRows(1))
		mock.ExpectRollback()

		_, err := repo.DeclareWinner(context.Background(), "c1", "u@x.com")
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing contest", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT `id` FROM `contests`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.DeclareWinner(context.Background(), "c1", "u@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContestRepository_Delete(t *testing.T) {
	t.Run("removes children then contest", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `submissions` WHERE contest_id = \\?").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("DELETE FROM `participants` WHERE contest_id = \\?").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM `contests` WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), "c1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing contest rolls back", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewContestRepository(gdb)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `submissions`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM `participants`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM `contests`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), "c1"), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContestRepository_WinCounts(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewContestRepository(gdb)

	mock.ExpectQuery("SELECT email, COUNT\\(\\*\\) AS points FROM `submissions` WHERE status = \\? GROUP BY .?email.? ORDER BY points DESC,email").
		WithArgs("winner").
		WillReturnRows(sqlmock.NewRows([]string{"email", "points"}).
			AddRow("a@x.com", 3).
			AddRow("b@x.com", 1))

	rows, err := repo.WinCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.WinCount{{Email: "a@x.com", Points: 3}, {Email: "b@x.com", Points: 1}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetRole(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		exists   int
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "unchanged value", affected: 0, exists: 1},
		{name: "missing user", affected: 0, exists: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			repo := NewUserRepository(gdb)

			mock.ExpectExec("UPDATE `users` SET `role`=\\?,`updated_at`=\\? WHERE id = \\?").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.affected == 0 {
				mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE id = \\?").
					WillReturnRows(countRows(tt.exists))
			}

			err := repo.SetRole(context.Background(), "u1", model.RoleCreator)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewUserRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "contest_limit"}).
			AddRow("u1", "u@x.com", "creator", 10))

	u, err := repo.FindByEmail(context.Background(), "u@x.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, u.Role)
	assert.Equal(t, 10, u.ContestLimit)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.FindByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_StoreDownIsUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		call   func(UserRepository) error
	}{
		{
			name: "find by emails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT \\* FROM `users` WHERE email IN").WillReturnError(context.DeadlineExceeded)
			},
			call: func(r UserRepository) error {
				_, err := r.FindByEmails(context.Background(), []string{"a@x.com"})
				return err
			},
		},
		{
			name: "list",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT \\* FROM `users` ORDER BY created_at").WillReturnError(context.DeadlineExceeded)
			},
			call: func(r UserRepository) error {
				_, err := r.List(context.Background())
				return err
			},
		},
		{
			name: "set role",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE `users` SET `role`").WillReturnError(context.DeadlineExceeded)
			},
			call: func(r UserRepository) error {
				return r.SetRole(context.Background(), "u1", model.RoleAdmin)
			},
		},
		{
			name: "set package",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE `users` SET").WillReturnError(context.DeadlineExceeded)
			},
			call: func(r UserRepository) error {
				return r.SetPackage(context.Background(), "a@x.com", "pro", 10)
			},
		},
		{
			name: "existence check after zero-row update",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec("UPDATE `users` SET `role`").WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE id = \\?").WillReturnError(context.DeadlineExceeded)
			},
			call: func(r UserRepository) error {
				return r.SetRole(context.Background(), "u1", model.RoleAdmin)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			tt.expect(mock)

			err := tt.call(NewUserRepository(gdb))
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
