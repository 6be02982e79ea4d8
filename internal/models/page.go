package models

// ButtonGroup is the container of page controls addressed by a test identifier
type ButtonGroup struct {
	TestID        string
	ActionLabel   string
	DisabledLabel string
}

// DummyPage holds the fixed content rendered by the dummy page
type DummyPage struct {
	Title        string
	Text         string
	TextTestID   string
	Buttons      ButtonGroup
	AlertMessage string
}

// DefaultDummyPage returns the content served at the site root
func DefaultDummyPage() DummyPage {
	return DummyPage{
		Title:      "GH Automation Setup and Testing Page",
		Text:       "This is a dummy test page",
		TextTestID: "dummy-text",
		Buttons: ButtonGroup{
			TestID:        "test-btn",
			ActionLabel:   "Test",
			DisabledLabel: "submit",
		},
		AlertMessage: "Test Message",
	}
}
