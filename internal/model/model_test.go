package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/ojt-tracker/internal/model"
)

func fixedDuration(mins int, err error) model.DurationFunc {
	return func(string, string) (int, error) { return mins, err }
}

func TestNewTimeEntry(t *testing.T) {
	e, err := model.NewTimeEntry("2024-03-04", "09:00", "10:30", " Code review ", "Project Work", "", fixedDuration(90, nil))
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 90, e.Duration)
	assert.Equal(t, "Code review", e.Task)
	assert.Equal(t, model.SourceManual, e.Source)
}

func TestNewTimeEntry_Rejects(t *testing.T) {
	errRange := errors.New("range")
	tests := []struct {
		name     string
		date     string
		task     string
		category string
		dur      model.DurationFunc
		want     error
	}{
		{"bad date", "04/03/2024", "Code review", "Other", fixedDuration(1, nil), model.ErrInvalidEntry},
		{"short task", "2024-03-04", "ab", "Other", fixedDuration(1, nil), model.ErrInvalidEntry},
		{"no category", "2024-03-04", "Code review", "  ", fixedDuration(1, nil), model.ErrInvalidEntry},
		{"duration error", "2024-03-04", "Code review", "Other", fixedDuration(0, errRange), errRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewTimeEntry(tt.date, "09:00", "10:00", tt.task, tt.category, "", tt.dur)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserValidate(t *testing.T) {
	u := model.User{Name: "Ana", Position: "Intern", Department: "IT", Supervisor: "Bo", TargetHours: 486}
	require.NoError(t, u.Validate())

	u.Department = "I"
	assert.ErrorIs(t, u.Validate(), model.ErrInvalidProfile)

	u.Department = "IT"
	u.TargetHours = 0
	assert.ErrorIs(t, u.Validate(), model.ErrInvalidProfile)
}

func TestParseTimeFrame(t *testing.T) {
	for _, s := range []string{"day", "week", "month", "all"} {
		f, err := model.ParseTimeFrame(s)
		require.NoError(t, err)
		assert.Equal(t, model.TimeFrame(s), f)
	}
	f, err := model.ParseTimeFrame("")
	require.NoError(t, err)
	assert.Equal(t, model.FrameAll, f)

	_, err = model.ParseTimeFrame("year")
	assert.Error(t, err)
}

func TestIsKnownCategory(t *testing.T) {
	assert.True(t, model.IsKnownCategory("Training"))
	assert.False(t, model.IsKnownCategory("training"))
}
