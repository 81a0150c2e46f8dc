package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	probes := []Probe{
		{
			Name:     "ok",
			Check:    func(ctx context.Context) error { return nil },
			Critical: true,
		},
		{
			Name:  "minor",
			Check: func(ctx context.Context) error { return errors.New("minor issue") },
		},
		{
			Name: "slow",
			Check: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			Timeout: 20 * time.Millisecond,
		},
	}

	results := Run(context.Background(), probes)

	require.Len(t, results, 3)
	assert.Equal(t, "ok", results[0].Probe.Name)
	assert.NoError(t, results[0].Error)
	assert.EqualError(t, results[1].Error, "minor issue")
	assert.ErrorIs(t, results[2].Error, context.DeadlineExceeded)
	assert.Less(t, results[2].Duration, time.Second)
}

func TestAnalyzeResults(t *testing.T) {
	fail := errors.New("fail")
	tests := []struct {
		name    string
		results []Result
		wantErr bool
	}{
		{
			name:    "All Pass",
			results: []Result{{Probe: Probe{Name: "P1", Critical: true}}},
		},
		{
			name:    "Critical Failure",
			results: []Result{{Probe: Probe{Name: "P1", Critical: true}, Error: fail}},
			wantErr: true,
		},
		{
			name:    "Non-Critical Failure",
			results: []Result{{Probe: Probe{Name: "P1"}, Error: fail}},
		},
		{
			name: "Mixed Failure",
			results: []Result{
				{Probe: Probe{Name: "P1"}, Error: fail},
				{Probe: Probe{Name: "P2", Critical: true}, Error: fail},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AnalyzeResults(tt.results)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fail)
				return
			}
			assert.NoError(t, err)
		})
	}
}
