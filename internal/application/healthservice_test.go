package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	err      error
	deadline bool
}

func (m *mockPinger) Ping(ctx context.Context) error {
	_, m.deadline = ctx.Deadline()
	return m.err
}

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name         string
		pingErr      error
		wantStatus   string
		wantDatabase string
	}{
		{name: "healthy", wantStatus: HealthOK, wantDatabase: HealthOK},
		{name: "db down", pingErr: errors.New("closed"), wantStatus: HealthDegraded, wantDatabase: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := &mockPinger{err: tt.pingErr}
			svc := NewHealthService(pinger, time.Second)

			report, err := svc.Check(context.Background())

			if tt.pingErr != nil {
				require.ErrorIs(t, err, tt.pingErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantDatabase, report.Database)
			assert.False(t, report.CheckedAt.IsZero())
			assert.True(t, pinger.deadline)
		})
	}
}

func TestHealthService_NoDatabase(t *testing.T) {
	report, err := NewHealthService(nil, time.Second).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, HealthOK, report.Status)
}
