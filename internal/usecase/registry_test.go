package usecase

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisruptionMonitor/internal/domain"
	"DisruptionMonitor/internal/observability"
)

func registryCoordinator(town, postal string) *RefreshCoordinator {
	return NewRefreshCoordinator(
		&stubSource{},
		domain.Location{Town: town, PostalCode: postal},
		CoordinatorConfig{KeepSolvedDays: 7},
		clockwork.NewFakeClock(),
		observability.NewMetricsForTesting(),
		testLogger(),
	)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	tilburg := registryCoordinator("Tilburg", "5045AB")
	breda := registryCoordinator("Breda", "4811AA")
	r.Register(tilburg)
	r.Register(breda)

	resolved, err := r.Resolve("5045AB")
	require.NoError(t, err)
	assert.Same(t, tilburg, resolved)

	_, err = r.Resolve("9999ZZ")
	assert.Error(t, err)

	all := r.All()
	require.Len(t, all, 2)
	assert.Same(t, tilburg, all[0], "registration order preserved")
	assert.Same(t, breda, all[1])

	snapshots := r.Snapshots()
	require.Len(t, snapshots, 2)
	assert.Equal(t, "5045AB", snapshots[0].Location.PostalCode)

	assert.False(t, r.Ready())
	require.NoError(t, tilburg.RequestRefresh(context.Background()))
	assert.False(t, r.Ready(), "ready only when every coordinator has succeeded")
	require.NoError(t, breda.RequestRefresh(context.Background()))
	assert.True(t, r.Ready())
}
