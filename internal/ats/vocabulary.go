package ats

// GeneralRole is the fallback category when no role reaches the hit threshold.
const GeneralRole = "General / Other"

// roleCategories is evaluated in this order; earlier entries win ties.
var roleCategories = []Role{
	{
		Label: "Software Engineering",
		CoreTech: []string{
			"javascript", "typescript", "python", "java", "c++", "c#", "go", "rust", "kotlin", "swift",
			"react", "vue", "angular", "next.js", "node.js", "express", "fastapi", "django", "spring",
			"rest", "restful", "graphql", "grpc", "api", "microservices", "docker", "kubernetes", "ci/cd",
			"aws", "azure", "gcp", "cloud", "sql", "postgresql", "mysql", "mongodb", "redis",
			"git", "github", "agile", "scrum", "testing", "unit test", "tdd", "system design",
		},
		ActionVerbs: []string{
			"built", "developed", "architected", "designed", "engineered", "implemented",
			"deployed", "optimized", "refactored", "shipped", "migrated", "integrated",
		},
	},
	{
		Label: "Data Science / ML",
		CoreTech: []string{
			"python", "r", "sql", "pandas", "numpy", "scikit-learn", "tensorflow", "pytorch", "keras",
			"machine learning", "deep learning", "nlp", "computer vision", "llm", "neural network",
			"regression", "classification", "clustering", "feature engineering", "data pipeline",
			"spark", "hadoop", "airflow", "mlflow", "a/b testing", "statistics", "hypothesis",
			"tableau", "power bi", "jupyter", "databricks", "bigquery", "snowflake",
		},
		ActionVerbs: []string{
			"analyzed", "modeled", "trained", "predicted", "evaluated", "visualized",
			"discovered", "quantified", "experimented", "deployed",
		},
	},
	{
		Label: "Product Management",
		CoreTech: []string{
			"product roadmap", "product strategy", "user stories", "okr", "kpi", "jira", "confluence",
			"agile", "scrum", "kanban", "sprint", "stakeholder", "go-to-market", "gtm",
			"user research", "customer discovery", "ux", "a/b testing", "metrics", "analytics",
			"competitive analysis", "market research", "growth", "retention", "conversion", "nps",
			"figma", "wireframe", "prototype", "backlog", "prioritization", "mvp",
		},
		ActionVerbs: []string{
			"launched", "drove", "led", "defined", "prioritized", "collaborated",
			"aligned", "delivered", "grew", "identified", "executed", "shipped",
		},
	},
	{
		Label: "Marketing",
		CoreTech: []string{
			"seo", "sem", "ppc", "google ads", "facebook ads", "email marketing", "content marketing",
			"social media", "brand", "campaign", "conversion rate", "ctr", "cpa", "cpm", "roas",
			"hubspot", "salesforce", "mailchimp", "google analytics", "copywriting", "lead generation",
			"funnel", "crm", "influencer", "affiliate", "b2b", "b2c", "demand generation",
		},
		ActionVerbs: []string{
			"launched", "grew", "increased", "optimized", "managed", "created",
			"executed", "driven", "generated", "analyzed",
		},
	},
	{
		Label: "Finance",
		CoreTech: []string{
			"financial modeling", "excel", "valuation", "dcf", "lbo", "m&a", "investment",
			"portfolio", "risk management", "derivatives", "equity", "fixed income", "compliance",
			"gaap", "ifrs", "financial statements", "budgeting", "forecasting", "variance analysis",
			"bloomberg", "capital markets", "private equity", "venture capital", "accounting",
		},
		ActionVerbs: []string{
			"analyzed", "modeled", "valued", "managed", "executed", "closed",
			"structured", "advised", "led", "presented",
		},
	},
	{
		Label: "Design (UX/UI)",
		CoreTech: []string{
			"figma", "sketch", "adobe xd", "invision", "zeplin", "user research", "usability testing",
			"wireframe", "prototype", "information architecture", "interaction design", "visual design",
			"design system", "accessibility", "wcag", "heuristic evaluation", "user journey",
			"persona", "design thinking", "adobe illustrator", "photoshop", "after effects",
		},
		ActionVerbs: []string{
			"designed", "created", "developed", "improved", "tested", "iterated",
			"facilitated", "delivered", "built", "led",
		},
	},
	{
		Label:    GeneralRole,
		CoreTech: []string{},
		ActionVerbs: []string{
			"led", "managed", "created", "developed", "improved", "delivered",
			"coordinated", "executed", "analyzed", "communicated",
		},
	},
}

var stopWords = toSet([]string{
	"the", "a", "an", "and", "or", "of", "to", "in", "for", "with", "is", "are",
	"as", "at", "by", "on", "be", "will", "you", "we", "our", "that", "this",
	"have", "has", "from", "your", "their", "its", "they", "it", "not", "but",
	"can", "if", "who", "also", "all", "about", "would", "when", "what", "such",
	"been", "being", "each", "other", "more", "than", "into", "these", "those",
	"should", "could", "shall", "may", "might", "must", "need", "able", "well",
	"like", "just", "over", "only", "very", "most", "some", "any", "few",
	"how", "where", "which", "while", "through", "during", "before", "after",
	"above", "below", "between", "under", "same", "different", "here", "there",
	"every", "both", "either", "neither", "too", "so", "nor", "no", "yes",
	"etc", "e.g", "i.e", "per", "via", "vs", "including", "include", "using",
	"work", "working", "experience", "role", "position", "job", "team", "company",
	"looking", "join", "opportunity", "strong", "ability", "skills", "requirements",
	"required", "preferred", "ideal", "candidate", "responsible", "responsibilities",
	"qualifications", "minimum", "years", "year", "plus", "knowledge", "understanding",
})

var softSkills = []string{
	"communication", "leadership", "problem solving", "critical thinking", "teamwork",
	"collaboration", "adaptability", "time management", "organization", "creativity",
	"emotional intelligence", "conflict resolution", "decision making", "interpersonal",
	"work ethic", "attention to detail", "flexibility", "self-motivated", "analytical",
	"independent", "mentoring", "coaching", "presentation skills", "public speaking",
}

var softSkillSet = toSet(softSkills)

var knownHardSkills = []string{
	"machine learning", "deep learning", "natural language processing", "computer vision",
	"data science", "data engineering", "data pipeline", "ci/cd", "a/b testing",
	"react native", "next.js", "node.js", "vue.js", "angular.js", "express.js",
	"unit test", "unit testing", "system design", "design system", "user research",
	"user experience", "product management", "project management", "cloud architecture",
	"full stack", "full-stack", "front end", "front-end", "back end", "back-end",
	"rest api", "restful api", "restful apis", "graphql api", "api design",
	"version control", "code review", "pull request", "agile methodology",
	"scrum master", "sprint planning", "technical leadership", "tech lead",
	"software architecture", "microservices architecture",
	"react.js", "typescript", "javascript", "python", "golang",
	"spring boot", "fastapi", "docker", "kubernetes", "terraform",
	"aws", "azure", "gcp", "google cloud",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"github actions", "jenkins", "gitlab ci",
	"web components", "server side rendering", "server-side rendering",
	"cross browser", "cross-browser", "responsive design", "mobile first",
	"mobile-first", "web performance", "performance optimization",
	"accessibility standards", "wcag", "html5", "css3", "es6",
	"javascript es6", "redux", "webpack", "eslint", "nuxt.js",
	"build tools", "git",
}

var knownHardSkillSet = toSet(knownHardSkills)

var universalVerbs = []string{
	"achieved", "accelerated", "managed", "spearheaded", "established", "created",
	"launched", "drove", "streamlined", "generated", "coordinated", "facilitated",
	"transformed", "pioneered", "championed", "mentored", "scaled", "automated",
	"negotiated", "orchestrated", "consolidated", "revamped",
}

var quantWords = []string{
	"increased", "reduced", "improved", "decreased", "grew", "saved",
	"generated", "accelerated", "boosted", "cut", "doubled", "tripled",
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Roles returns a copy of the role categories in evaluation order.
func Roles() []Role {
	out := make([]Role, len(roleCategories))
	for i, r := range roleCategories {
		out[i] = r.clone()
	}
	return out
}

// SoftSkills returns a copy of the soft-skill vocabulary.
func SoftSkills() []string {
	return append([]string(nil), softSkills...)
}

// KnownHardSkills returns a copy of the curated hard-skill phrases.
func KnownHardSkills() []string {
	return append([]string(nil), knownHardSkills...)
}
