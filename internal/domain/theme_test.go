package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThemeSettings(t *testing.T) {
	settings := DefaultThemeSettings()

	assert.Equal(t, "teal", settings.Background)
	assert.Equal(t, "medium", settings.IconSize)
	require.Len(t, settings.Sections, 6)
	assert.Equal(t, "services", settings.Sections[0].ID)

	// Mutating the returned slice must not leak into later calls.
	settings.Sections[0].Label = "changed"
	assert.Equal(t, "Services", DefaultThemeSettings().Sections[0].Label)
}

func TestRepairSectionsRestoresMissing(t *testing.T) {
	settings := DefaultThemeSettings()
	// Drop two sections and customize one that stays.
	settings.Sections = settings.Sections[:4]
	settings.Sections[2].Label = "Customer Stories"
	settings.Sections[2].Visible = false

	repaired, changed := RepairSections(settings)
	require.True(t, changed)
	require.Len(t, repaired.Sections, 6)

	byID := make(map[string]Section)
	for _, s := range repaired.Sections {
		byID[s.ID] = s
	}
	assert.Contains(t, byID, "forum")
	assert.Contains(t, byID, "games")
	assert.Equal(t, "Customer Stories", byID["reviews"].Label, "customizations survive repair")
	assert.False(t, byID["reviews"].Visible)

	for i := 1; i < len(repaired.Sections); i++ {
		assert.LessOrEqual(t, repaired.Sections[i-1].Order, repaired.Sections[i].Order)
	}
}

func TestRepairSectionsIdempotent(t *testing.T) {
	settings, changed := RepairSections(ThemeSettings{Background: "forest"})
	require.True(t, changed)

	again, changed := RepairSections(settings)
	assert.False(t, changed, "repair of a complete list changes nothing")
	assert.Equal(t, settings, again)
}
