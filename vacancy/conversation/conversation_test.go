package conversation

import (
	"context"
	"testing"

	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/vacancy/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPath(t *testing.T) {
	cat := catalog.Default()
	s := Session{Step: StepIdle}

	s, out := ChooseLanguage(s, "go")
	require.Equal(t, Advanced, out)
	assert.Equal(t, StepAwaitingSalary, s.Step)

	s, out = ChooseSalary(s, cat, "от 150k")
	require.Equal(t, Advanced, out)
	assert.Equal(t, StepAwaitingRegion, s.Step)

	s, out = ChooseRegion(s, "Удаленная работа")
	require.Equal(t, Completed, out)
	assert.True(t, s.Idle())
	assert.Equal(t, Selection{Language: "go", SalaryBand: "от 150k", Region: "Удаленная работа"}, s.Selection)
}

func TestReselectionKeepsLatestValues(t *testing.T) {
	cat := catalog.Default()
	s := Session{}

	s, _ = ChooseLanguage(s, "php")
	s, _ = ChooseSalary(s, cat, "от 100k")
	s, _ = ChooseLanguage(s, "rust")
	assert.Empty(t, s.Selection.SalaryBand, "language restarts the dialog")
	s, _ = ChooseSalary(s, cat, "от 100k")
	s, _ = ChooseSalary(s, cat, "от 300к")
	s, _ = ChooseSalary(s, cat, "от 200к")

	s, out := ChooseRegion(s, "Питер")
	require.Equal(t, Completed, out)
	assert.Equal(t, Selection{Language: "rust", SalaryBand: "от 200к", Region: "Питер"}, s.Selection)
}

func TestGuards(t *testing.T) {
	cat := catalog.Default()

	idle := Session{Step: StepIdle}
	_, out := ChooseSalary(idle, cat, "от 100k")
	assert.Equal(t, Ignored, out, "salary before language")
	_, out = ChooseRegion(idle, "Москва")
	assert.Equal(t, Ignored, out, "region before salary")

	s, _ := ChooseLanguage(idle, "go")
	_, out = ChooseRegion(s, "Москва")
	assert.Equal(t, Ignored, out, "region while waiting for salary")

	next, out := ChooseSalary(s, cat, "от 999k")
	assert.Equal(t, Ignored, out, "unknown band")
	assert.Equal(t, s, next)

	_, out = ChooseLanguage(idle, "")
	assert.Equal(t, Ignored, out)
}

func TestCancel(t *testing.T) {
	cat := catalog.Default()

	s, out := Cancel(Session{})
	assert.Equal(t, Ignored, out)
	assert.True(t, s.Idle())

	s, _ = ChooseLanguage(s, "go")
	s, _ = ChooseSalary(s, cat, "от 100k")
	s, out = Cancel(s)
	assert.Equal(t, Cancelled, out)
	assert.Equal(t, Session{Step: StepIdle}, s)

	s, _ = ChooseLanguage(s, "python")
	assert.Equal(t, Selection{Language: "python"}, s.Selection, "no stale salary or region after cancel")
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(state.NewMemoryManager())

	s, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, s.Idle())

	want := Session{Step: StepAwaitingRegion, Selection: Selection{Language: "c#", SalaryBand: "от 150k"}}
	require.NoError(t, store.Save(ctx, 1, want))
	got, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Save(ctx, 1, Session{Step: StepIdle}))
	got, err = store.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Idle())
	assert.Equal(t, Selection{}, got.Selection)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ignored", Ignored.String())
	assert.Equal(t, "completed", Completed.String())
}
