package eyes

import "github.com/acmebank/visualtests/internal/browser"

// Target starts a checkpoint definition, e.g.
//
//	eyes.Target.Window().Fully().WithName("Login page")
var Target targetBuilder

type targetBuilder struct{}

// Window targets the browser window
func (targetBuilder) Window() *CheckSettings {
	return &CheckSettings{}
}

// Region targets a single element
func (targetBuilder) Region(by browser.By) *CheckSettings {
	return &CheckSettings{region: &by}
}

// CheckSettings describes what a checkpoint captures and how it is compared
type CheckSettings struct {
	name       string
	fully      bool
	matchLevel MatchLevel
	region     *browser.By
}

// Fully captures the entire page rather than the viewport
func (s *CheckSettings) Fully() *CheckSettings {
	s.fully = true
	return s
}

// WithName sets the checkpoint name shown on the dashboard
func (s *CheckSettings) WithName(name string) *CheckSettings {
	s.name = name
	return s
}

// Layout compares structure only, ignoring text and colour
func (s *CheckSettings) Layout() *CheckSettings {
	s.matchLevel = MatchLevelLayout
	return s
}

// Strict compares what a human would notice
func (s *CheckSettings) Strict() *CheckSettings {
	s.matchLevel = MatchLevelStrict
	return s
}

// Content compares text and structure, ignoring colour
func (s *CheckSettings) Content() *CheckSettings {
	s.matchLevel = MatchLevelContent
	return s
}

func (s *CheckSettings) Name() string { return s.name }

func (s *CheckSettings) IsFully() bool { return s.fully }

// MatchLevel returns the level set on the checkpoint, empty if none was set
func (s *CheckSettings) MatchLevel() MatchLevel { return s.matchLevel }

// Region returns the targeted element, nil for the window
func (s *CheckSettings) Region() *browser.By { return s.region }
