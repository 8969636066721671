package research

import (
	"github.com/metaarchitect/research-engine/pkg/uif"
)

// Phase names one controller entry point.
type Phase string

const (
	Phase1 Phase = "phase1"
	Phase2 Phase = "phase2"
	Phase3 Phase = "phase3"
	Phase4 Phase = "phase4"
	Unlock Phase = "unlock"
)

// Phases lists every entry point in workflow order.
var Phases = []Phase{Phase1, Phase2, Phase3, Phase4, Unlock}

// ParsePhase resolves a phase name.
func ParsePhase(name string) (Phase, bool) {
	for _, phase := range Phases {
		if string(phase) == name {
			return phase, true
		}
	}

	return "", false
}

// Tables names the record store tables the controller touches.
type Tables struct {
	Ideas string
	Logs  string
	Brand string
	Hooks string
}

// Config is everything the controller needs besides its collaborators.
type Config struct {
	Tables        Tables
	BrandName     string // optional filter on the brand table's name field
	Profile       uif.Profile
	Pillars       []string
	QueryModel    string
	CompilerModel string
	HookModel     string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Tables: Tables{
			Ideas: "ideas",
			Logs:  "logs",
			Brand: "brand",
			Hooks: "hooks_library",
		},
		Profile:       uif.ProfileStandard,
		Pillars:       uif.DefaultPillars,
		QueryModel:    "sonar-pro",
		CompilerModel: "claude-sonnet-4-6",
		HookModel:     "claude-sonnet-4-6",
	}
}
