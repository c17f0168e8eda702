package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-api/internal/domain"
)

func TestDefaultCatalogPoints(t *testing.T) {
	c := DefaultCatalog()

	want := map[domain.ActivityType]int{
		domain.ActivityTypeCall:         10,
		domain.ActivityTypeEmail:        5,
		domain.ActivityTypeSMS:          3,
		domain.ActivityTypeWhatsApp:     4,
		domain.ActivityTypeMeeting:      15,
		domain.ActivityTypeNote:         2,
		domain.ActivityTypeStatusChange: 1,
		domain.ActivityTypeTemplateSent: 3,
		domain.ActivityTypeFileShared:   5,
		domain.ActivityTypePageView:     7,
	}
	require.Equal(t, len(want), c.Len())
	for typ, points := range want {
		assert.Equal(t, points, c.Points(typ), "points for %s", typ)
	}
}

func TestCatalogUnknownType(t *testing.T) {
	c := DefaultCatalog()

	_, ok := c.Get(domain.ActivityType("carrier_pigeon"))
	assert.False(t, ok)
	assert.Zero(t, c.Points(domain.ActivityType("carrier_pigeon")))
}

func TestCatalogOrderStable(t *testing.T) {
	c := DefaultCatalog()

	types := c.Types()
	require.Equal(t, c.Len(), len(types))
	assert.Equal(t, domain.ActivityTypeCall, types[0])
	assert.Equal(t, domain.ActivityTypePageView, types[len(types)-1])

	configs := c.Configs()
	require.Equal(t, len(types), len(configs))
	for i, cfg := range configs {
		assert.Equal(t, types[i], cfg.ID)
	}
}

func TestCatalogCapabilityFlags(t *testing.T) {
	c := DefaultCatalog()

	call, ok := c.Get(domain.ActivityTypeCall)
	require.True(t, ok)
	assert.True(t, call.AllowDuration)
	assert.True(t, call.AllowOutcome)
	assert.False(t, call.AllowFiles)

	note, ok := c.Get(domain.ActivityTypeNote)
	require.True(t, ok)
	assert.False(t, note.AllowDuration)
	assert.False(t, note.AllowOutcome)

	file, ok := c.Get(domain.ActivityTypeFileShared)
	require.True(t, ok)
	assert.True(t, file.AllowFiles)
}
