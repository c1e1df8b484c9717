package postgres

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradePostgreSQL_DeleteGradeWritesHistory(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	store := NewGradePostgreSQL(db)

	course := testutil.SeedCourse(t, db, "C1")
	user := testutil.SeedUser(t, db, "u1")
	item, grade := testutil.SeedGrade(t, db, course.ID, user.ID, 7.5)

	items, err := store.GetItems(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	grades, err := store.GetUserGrades(ctx, []uint{item.ID}, user.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)

	require.NoError(t, store.DeleteGrade(ctx, &grades[0], "local/recompletion", 42))

	assert.Zero(t, testutil.Count(t, db, &models.Grade{}, ""))

	var history models.GradeHistory
	require.NoError(t, db.First(&history).Error)
	assert.Equal(t, models.GradeHistoryDelete, history.Action)
	assert.Equal(t, grade.ID, history.OldID)
	assert.Equal(t, uint(42), history.LoggedUser)
	require.NotNil(t, history.FinalGrade)
	assert.Equal(t, 7.5, *history.FinalGrade)
}

func TestGradePostgreSQL_NoItems(t *testing.T) {
	grades, err := NewGradePostgreSQL(testutil.DB(t)).GetUserGrades(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Empty(t, grades)
}
