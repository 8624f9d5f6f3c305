package domain

import "sort"

// Section is a configurable desktop or start-menu shortcut entry.
type Section struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Icon          string `json:"icon"`
	Order         int    `json:"order"`
	Visible       bool   `json:"visible"`
	StartMenuOnly bool   `json:"start_menu_only"`
}

// ThemeSettings is the global singleton describing the desktop look:
// wallpaper, icon sizing, and the ordered shortcut sections. Read by all
// clients, mutated only through the admin console.
type ThemeSettings struct {
	Background string    `json:"background"`
	IconSize   string    `json:"icon_size"`
	Sections   []Section `json:"sections"`
}

// requiredSections are the shortcut entries every installation must have.
// Loading theme settings repairs the list if any are missing.
var requiredSections = []Section{
	{ID: "services", Label: "Services", Icon: "services.ico", Order: 1, Visible: true},
	{ID: "booking", Label: "Book Appointment", Icon: "calendar.ico", Order: 2, Visible: true},
	{ID: "reviews", Label: "Reviews", Icon: "star.ico", Order: 3, Visible: true},
	{ID: "contact", Label: "Contact Us", Icon: "mail.ico", Order: 4, Visible: true},
	{ID: "forum", Label: "Community", Icon: "forum.ico", Order: 5, Visible: true},
	{ID: "games", Label: "Games", Icon: "joystick.ico", Order: 6, Visible: true, StartMenuOnly: true},
}

// DefaultThemeSettings returns the installation defaults.
func DefaultThemeSettings() ThemeSettings {
	sections := make([]Section, len(requiredSections))
	copy(sections, requiredSections)
	return ThemeSettings{
		Background: "teal",
		IconSize:   "medium",
		Sections:   sections,
	}
}

// RepairSections restores any missing required sections, preserving
// customizations to the ones that exist. The returned bool reports
// whether anything was added. Idempotent: a second run changes nothing.
func RepairSections(settings ThemeSettings) (ThemeSettings, bool) {
	present := make(map[string]bool, len(settings.Sections))
	for _, s := range settings.Sections {
		present[s.ID] = true
	}

	changed := false
	for _, required := range requiredSections {
		if !present[required.ID] {
			settings.Sections = append(settings.Sections, required)
			changed = true
		}
	}

	if changed {
		sort.SliceStable(settings.Sections, func(i, j int) bool {
			return settings.Sections[i].Order < settings.Sections[j].Order
		})
	}
	return settings, changed
}
