package pipeline

import (
	"strings"

	"podforge/internal/core"
)

// domainExpertiseTable maps domain tags to expert personas. Lookup is pure:
// no side effects and no failure mode. Unlisted domains fall back to the
// generic subject matter expert below.
var domainExpertiseTable = map[string]core.DomainExpertise{
	"fintech": {
		ExpertTitle:       "Financial Technology Analyst",
		Description:       "Specialist in payment systems, digital banking and financial infrastructure",
		Requirements:      []string{"Explain money flows precisely", "Cite regulatory context", "Use concrete transaction examples"},
		AudienceGuidance:  "Translate financial jargon; assume curiosity about money, not a finance degree",
		StructureTemplate: "problem-solution",
		KeyQuestions: []string{
			"Who moves the money and who bears the risk?",
			"What changed compared to the previous system?",
			"How do ordinary users experience this?",
		},
	},
	"healthcare": {
		ExpertTitle:       "Healthcare Systems Expert",
		Description:       "Specialist in clinical practice, health technology and patient outcomes",
		Requirements:      []string{"Distinguish evidence from speculation", "Respect patient privacy framing", "Explain clinical terms plainly"},
		AudienceGuidance:  "Lead with patient impact before system mechanics",
		StructureTemplate: "human-impact",
		KeyQuestions: []string{
			"How does this change outcomes for patients?",
			"What does the clinical evidence actually show?",
			"Who pays and who benefits?",
		},
	},
	"technology": {
		ExpertTitle:       "Technology Strategist",
		Description:       "Specialist in software systems, platforms and emerging technology",
		Requirements:      []string{"Build from first principles", "Use analogies for abstractions", "Separate hype from deployment reality"},
		AudienceGuidance:  "Assume general technical curiosity; define acronyms on first use",
		StructureTemplate: "concept-breakdown",
		KeyQuestions: []string{
			"What problem does this actually solve?",
			"How does it work under the hood?",
			"What breaks when it fails?",
		},
	},
	"business": {
		ExpertTitle:       "Business Strategy Analyst",
		Description:       "Specialist in markets, business models and competitive dynamics",
		Requirements:      []string{"Quantify market claims", "Name the incentives", "Contrast competing strategies"},
		AudienceGuidance:  "Frame through decisions and trade-offs rather than abstractions",
		StructureTemplate: "market-analysis",
		KeyQuestions: []string{
			"Who wins and who loses?",
			"What does the unit economics look like?",
			"Why now?",
		},
	},
	"education": {
		ExpertTitle:       "Education and Learning Specialist",
		Description:       "Specialist in pedagogy, learning science and education systems",
		Requirements:      []string{"Ground claims in learning research", "Include learner perspectives", "Address access and equity"},
		AudienceGuidance:  "Speak to teachers, parents and learners at once",
		StructureTemplate: "story-driven",
		KeyQuestions: []string{
			"What does this change in the classroom?",
			"What does the research say about effectiveness?",
			"Who gets left out?",
		},
	},
	"science": {
		ExpertTitle:       "Science Communicator",
		Description:       "Specialist in translating research findings for broad audiences",
		Requirements:      []string{"Cite the underlying studies", "Convey uncertainty honestly", "Use vivid physical analogies"},
		AudienceGuidance:  "Wonder first, mechanism second, caveats third",
		StructureTemplate: "concept-breakdown",
		KeyQuestions: []string{
			"What did we believe before, and what changed?",
			"How confident is the field in this result?",
			"What would falsify it?",
		},
	},
	"history": {
		ExpertTitle:       "Historian and Narrative Researcher",
		Description:       "Specialist in historical context, primary sources and narrative arcs",
		Requirements:      []string{"Anchor events in dates and places", "Use primary-source quotes", "Connect past to present"},
		AudienceGuidance:  "Tell it as a story with stakes, not a list of dates",
		StructureTemplate: "chronological",
		KeyQuestions: []string{
			"What was at stake for the people involved?",
			"What did contemporaries get wrong?",
			"What echoes into today?",
		},
	},
}

// genericExpertise is the fallback persona for unlisted domains.
var genericExpertise = core.DomainExpertise{
	ExpertTitle:       "Subject Matter Expert",
	Description:       "Generalist researcher able to structure any topic for audio",
	Requirements:      []string{"Verify factual claims", "Balance depth with accessibility", "Keep a clear narrative thread"},
	AudienceGuidance:  "Assume an interested general listener with no prior background",
	StructureTemplate: "five-stage",
	KeyQuestions: []string{
		"What is this, in one sentence?",
		"Why should a listener care?",
		"What do experts disagree about?",
		"What surprised you while researching this?",
		"What should listeners take away?",
	},
}

// ResolveExpertise maps a domain tag to its expert persona. Unknown domains
// receive the generic entry.
func ResolveExpertise(domain string) core.DomainExpertise {
	if expertise, ok := domainExpertiseTable[strings.ToLower(strings.TrimSpace(domain))]; ok {
		return expertise
	}
	return genericExpertise
}
