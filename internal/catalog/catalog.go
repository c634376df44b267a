// Package catalog holds the built-in company profiles and role rubrics that
// get attached to the interview configuration before it is handed to the
// workflow engine. The workflow turns them into prompts; this side only
// selects and forwards them.
package catalog

type CompanyProfile struct {
	Name       string   `json:"name"`
	Culture    string   `json:"culture"`
	Interview  string   `json:"interview_style"`
	ValueAreas []string `json:"value_areas"`
}

type RoleRubric struct {
	Focus      string   `json:"focus"`
	Dimensions []string `json:"dimensions"`
	Bar        string   `json:"bar"`
}

const (
	ModeBehavioral        = "behavioral"
	ModeBehavioralPlusDSA = "behavioral_plus_dsa"
)

var companyProfiles = map[string]CompanyProfile{
	"general_tech": {
		Name:       "General Tech",
		Culture:    "collaborative, delivery-focused engineering culture",
		Interview:  "structured behavioral questions with follow-up probes",
		ValueAreas: []string{"ownership", "communication", "impact"},
	},
	"big_tech": {
		Name:       "Big Tech",
		Culture:    "scale-oriented, data-driven decision making",
		Interview:  "leadership-principle style behavioral rounds",
		ValueAreas: []string{"customer obsession", "bias for action", "dive deep"},
	},
	"startup": {
		Name:       "Startup",
		Culture:    "fast-moving, generalist, high ambiguity tolerance",
		Interview:  "conversational, scrappiness and breadth probes",
		ValueAreas: []string{"velocity", "versatility", "pragmatism"},
	},
	"consulting": {
		Name:       "Consulting",
		Culture:    "client-facing, structured communication first",
		Interview:  "case-adjacent behavioral questions",
		ValueAreas: []string{"structure", "stakeholder management", "clarity"},
	},
}

var roleRubrics = map[string]RoleRubric{
	"behavioral_grad": {
		Focus:      "potential and learning velocity over track record",
		Dimensions: []string{"Communication", "Clarity", "Motivation", "Collaboration"},
		Bar:        "coherent STAR stories from coursework, internships or projects",
	},
	"behavioral_junior": {
		Focus:      "execution within a team and growing ownership",
		Dimensions: []string{"Communication", "Ownership", "Collaboration", "Problem solving"},
		Bar:        "concrete examples of delivered work with measurable outcomes",
	},
	"behavioral_mid": {
		Focus:      "independent delivery and cross-team influence",
		Dimensions: []string{"Leadership", "Communication", "Impact", "Problem solving"},
		Bar:        "owned initiatives end to end, handled ambiguity and trade-offs",
	},
	"behavioral_senior": {
		Focus:      "technical leadership and organizational impact",
		Dimensions: []string{"Leadership", "Strategy", "Mentorship", "Impact"},
		Bar:        "multi-quarter initiatives, mentoring, shaping team direction",
	},
	"behavioral_dsa_grad": {
		Focus:      "fundamentals plus clear thinking out loud",
		Dimensions: []string{"Problem solving", "Communication", "Code clarity", "Testing"},
		Bar:        "clean solutions to standard data-structure problems",
	},
	"behavioral_dsa_junior": {
		Focus:      "solid coding under light time pressure",
		Dimensions: []string{"Problem solving", "Complexity analysis", "Code clarity", "Communication"},
		Bar:        "optimal or near-optimal solutions with stated complexity",
	},
	"behavioral_dsa_mid": {
		Focus:      "efficient solutions and edge-case rigor",
		Dimensions: []string{"Problem solving", "Complexity analysis", "Edge cases", "Communication"},
		Bar:        "optimal solutions, proactive edge-case handling",
	},
	"behavioral_dsa_senior": {
		Focus:      "expert coding plus design judgment",
		Dimensions: []string{"Problem solving", "Design judgment", "Complexity analysis", "Communication"},
		Bar:        "optimal solutions with articulated design alternatives",
	},
}

// Company looks up a company profile by preset key.
func Company(preset string) (CompanyProfile, bool) {
	p, ok := companyProfiles[preset]
	return p, ok
}

// Rubric selects the role rubric for an interview mode and seniority, e.g.
// ("behavioral_plus_dsa", "mid") -> behavioral_dsa_mid.
func Rubric(mode, seniority string) (RoleRubric, bool) {
	var key string
	switch mode {
	case ModeBehavioral:
		key = "behavioral_" + seniority
	case ModeBehavioralPlusDSA:
		key = "behavioral_dsa_" + seniority
	default:
		return RoleRubric{}, false
	}
	r, ok := roleRubrics[key]
	return r, ok
}
