package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/opsdesk-service/internal/domain"
)

func testTable() Table {
	return NewTable([]domain.SLAConfig{
		{TicketType: domain.TicketTypeVolumeShortfall, Hours: 48, Priority: domain.TicketPriorityHigh},
		{TicketType: domain.TicketTypeDataMismatch, Hours: 24, Priority: domain.TicketPriorityCritical},
	})
}

func TestResolveKnownTypes(t *testing.T) {
	table := testTable()

	cfg, err := Resolve(domain.TicketTypeVolumeShortfall, table)
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.Hours)
	assert.Equal(t, domain.TicketPriorityHigh, cfg.Priority)

	cfg, err = Resolve(domain.TicketTypeDataMismatch, table)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Hours)
	assert.Equal(t, domain.TicketPriorityCritical, cfg.Priority)
}

func TestResolveIsDeterministic(t *testing.T) {
	table := testTable()
	first, err := Resolve(domain.TicketTypeVolumeShortfall, table)
	require.NoError(t, err)
	second, err := Resolve(domain.TicketTypeVolumeShortfall, table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveMissingType(t *testing.T) {
	table := testTable()
	_, err := Resolve(domain.TicketType("job_feed_empty"), table)
	assert.ErrorIs(t, err, ErrConfigurationMissing)

	_, err = Resolve(domain.TicketTypeVolumeShortfall, NewTable(nil))
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestNewTableLastRowWins(t *testing.T) {
	table := NewTable([]domain.SLAConfig{
		{TicketType: domain.TicketTypeDataMismatch, Hours: 24, Priority: domain.TicketPriorityMedium},
		{TicketType: domain.TicketTypeDataMismatch, Hours: 12, Priority: domain.TicketPriorityHigh},
	})
	cfg, err := Resolve(domain.TicketTypeDataMismatch, table)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Hours)
}
