package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikigame/pkg/model"
)

func readyState() State {
	return State{}.CompleteStart(
		model.PageRef{Title: "Albert Einstein", URL: "https://en.wikipedia.org/wiki/Albert_Einstein"},
		&model.Article{Title: "Banana"},
	)
}

func TestState_BeginNavigate(t *testing.T) {
	loading, _ := readyState().BeginNavigate("Fruit")

	tests := []struct {
		name    string
		state   State
		title   string
		wantErr error
	}{
		{"NotStarted", State{}, "Fruit", ErrNotStarted},
		{"Loading", loading, "Fruit", ErrBusy},
		{"Won", readyState().ReachGoal(10, nil), "Fruit", ErrGameOver},
		{"EmptyTitle", readyState(), " _ ", ErrEmptyTitle},
		{"Ready", readyState(), "fruit_salad", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.state.BeginNavigate(tt.title)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.state, next, "rejected transition must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PhaseLoading, next.Phase)
			assert.Equal(t, "fruit salad", next.Pending)
			assert.Equal(t, tt.state.Current, next.Current, "previous article kept while loading")
		})
	}
}

func TestState_Transitions(t *testing.T) {
	s := readyState()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.True(t, s.Started)
	assert.Zero(t, s.Steps)
	assert.Zero(t, s.Points)

	loading, err := s.BeginNavigate("Fruit")
	require.NoError(t, err)

	failed := loading.FailNavigate("nope")
	assert.Equal(t, PhaseReady, failed.Phase)
	assert.Equal(t, 0, failed.Steps)
	assert.Equal(t, "Banana", failed.Current.Title)
	assert.Equal(t, "nope", failed.Notice)

	loading, err = failed.BeginNavigate("Fruit")
	require.NoError(t, err)
	assert.Empty(t, loading.Notice, "a new move clears the notice")

	advanced := loading.Advance(&model.Article{Title: "Fruit"})
	assert.Equal(t, 1, advanced.Steps)
	assert.Equal(t, "Fruit", advanced.Current.Title)

	// Receiver is untouched by value transitions.
	assert.Equal(t, 0, loading.Steps)

	assert.True(t, advanced.IsGoal("albert_einstein"))
	assert.False(t, advanced.IsGoal("Einstein"))

	won := advanced.ReachGoal(10, &model.Article{Title: "won"})
	assert.Equal(t, PhaseWon, won.Phase)
	assert.Equal(t, 2, won.Steps)
	assert.Equal(t, 10, won.Points)

	_, err = won.BeginStart()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, State{}, won.AbortStart())
}

func TestPhase_Text(t *testing.T) {
	for _, p := range []Phase{PhaseNotStarted, PhaseLoading, PhaseReady, PhaseWon} {
		b, err := json.Marshal(p)
		require.NoError(t, err)

		var back Phase
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, p, back)
	}

	b, _ := json.Marshal(PhaseNotStarted)
	assert.Equal(t, `"not_started"`, string(b))
	assert.Equal(t, "phase(9)", Phase(9).String())

	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("paused")))
}
