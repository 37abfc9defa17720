package memory

import "regexp"

// LearnRule binds an utterance pattern to the fact key its first
// capture group feeds. Rules are evaluated in order; the first match
// wins without scoring.
type LearnRule struct {
	Pattern *regexp.Regexp
	Key     string
}

// learnRules is the ordered fact-learning rule table. Narrow explicit
// phrasings come before the broad preference catch-alls so "i am 25
// years old" lands on age, not likes.
var learnRules = []LearnRule{
	// Name (explicit phrasings only).
	{regexp.MustCompile(`\bmy name is ([a-zA-Z ]{2,})`), "name"},
	{regexp.MustCompile(`\bi am called ([a-zA-Z ]{2,})`), "name"},
	{regexp.MustCompile(`\bpeople call me ([a-zA-Z ]{2,})`), "name"},

	// Age.
	{regexp.MustCompile(`\bmy age is (\d{1,3})`), "age"},
	{regexp.MustCompile(`\bi am (\d{1,3}) years? old`), "age"},
	{regexp.MustCompile(`\bage is (\d{1,3})`), "age"},

	// Location.
	{regexp.MustCompile(`\bi live in ([a-zA-Z ]{2,})`), "location"},
	{regexp.MustCompile(`\bi stay (?:in|at) ([a-zA-Z ]{2,})`), "location"},
	{regexp.MustCompile(`\bi am from ([a-zA-Z ]{2,})`), "location"},
	{regexp.MustCompile(`\bmy location is ([a-zA-Z ]{2,})`), "location"},

	// Role / profession.
	{regexp.MustCompile(`\bi work as (.+)`), "role"},
	{regexp.MustCompile(`\bmy role is (.+)`), "role"},
	{regexp.MustCompile(`\bmy profession is (.+)`), "role"},
	{regexp.MustCompile(`\bi work in (.+)`), "role"},
	{regexp.MustCompile(`\bi am an? (developer|engineer|student|designer|programmer|tester|analyst)`), "role"},

	// Skills (multi-value).
	{regexp.MustCompile(`\bmy skills are (.+)`), "skills"},
	{regexp.MustCompile(`\bmy skills include (.+)`), "skills"},
	{regexp.MustCompile(`\bi have skills in (.+)`), "skills"},
	{regexp.MustCompile(`\bi know (.+)`), "skills"},
	{regexp.MustCompile(`\bi am skilled in (.+)`), "skills"},
	{regexp.MustCompile(`\bi am learning (.+)`), "skills"},

	// Tools / technology (multi-value).
	{regexp.MustCompile(`\bi use tools like (.+)`), "tools"},
	{regexp.MustCompile(`\bi use software like (.+)`), "tools"},
	{regexp.MustCompile(`\bi use technologies like (.+)`), "tools"},
	{regexp.MustCompile(`\bi use (.+)`), "tools"},
	{regexp.MustCompile(`\bi work with (.+)`), "tools"},
	{regexp.MustCompile(`\bi work on (.+)`), "tools"},
	{regexp.MustCompile(`\bthe tools i use are (.+)`), "tools"},
	{regexp.MustCompile(`\btools i use are (.+)`), "tools"},
	{regexp.MustCompile(`\bmy tools are (.+)`), "tools"},
	{regexp.MustCompile(`\bmy primary tools are (.+)`), "tools"},
	{regexp.MustCompile(`\bi am familiar with (.+)`), "tools"},
	{regexp.MustCompile(`\bi have worked with (.+)`), "tools"},

	// Career goal.
	{regexp.MustCompile(`\bmy career goal is (.+)`), "career_goal"},
	{regexp.MustCompile(`\bmy goal is to become an? (.+)`), "career_goal"},
	{regexp.MustCompile(`\bi want to become an? (.+)`), "career_goal"},
	{regexp.MustCompile(`\bi aim to be an? (.+)`), "career_goal"},
	{regexp.MustCompile(`\bi aspire to be an? (.+)`), "career_goal"},
	{regexp.MustCompile(`\bi dream of becoming an? (.+)`), "career_goal"},
	{regexp.MustCompile(`\bi am working towards becoming an? (.+)`), "career_goal"},

	// Preferred job location.
	{regexp.MustCompile(`\bi want a job in (.+)`), "preferred_job_location"},
	{regexp.MustCompile(`\bi am looking for a job in (.+)`), "preferred_job_location"},
	{regexp.MustCompile(`\bi want to work in (.+)`), "preferred_job_location"},
	{regexp.MustCompile(`\bi prefer to work in (.+)`), "preferred_job_location"},
	{regexp.MustCompile(`\bmy preferred job location is (.+)`), "preferred_job_location"},
	{regexp.MustCompile(`\bmy preferred work location is (.+)`), "preferred_job_location"},
	{regexp.MustCompile(`\bmy job location preference is (.+)`), "preferred_job_location"},

	// Learning style.
	{regexp.MustCompile(`\bi learn best by (.+)`), "learning_style"},
	{regexp.MustCompile(`\bmy learning style is (.+)`), "learning_style"},
	{regexp.MustCompile(`\bi prefer learning by (.+)`), "learning_style"},
	{regexp.MustCompile(`\bi learn better by (.+)`), "learning_style"},
	{regexp.MustCompile(`\bi learn best through (.+)`), "learning_style"},
	{regexp.MustCompile(`\bi understand things better by (.+)`), "learning_style"},
	{regexp.MustCompile(`\bi prefer to learn through (.+)`), "learning_style"},

	// Likes (multi-value).
	{regexp.MustCompile(`\bi like (.+)`), "likes"},
	{regexp.MustCompile(`\bi love (.+)`), "likes"},
	{regexp.MustCompile(`\bi enjoy (.+)`), "likes"},
	{regexp.MustCompile(`\bi prefer (.+)`), "likes"},
	{regexp.MustCompile(`\bmy favorite (?:food|thing|item)? ?is (.+)`), "likes"},
	{regexp.MustCompile(`\bi am into (.+)`), "likes"},

	// Dislikes (multi-value).
	{regexp.MustCompile(`\bi dislike (.+)`), "dislikes"},
	{regexp.MustCompile(`\bi hate (.+)`), "dislikes"},
	{regexp.MustCompile(`\bi dont like (.+)`), "dislikes"},
	{regexp.MustCompile(`\bi do not like (.+)`), "dislikes"},
	{regexp.MustCompile(`\bi avoid (.+)`), "dislikes"},
}

// queryPhrases maps a fact key to canonical question phrasings. Order
// matters: on score ties the earlier key keeps the match.
var queryPhrases = []struct {
	Key     string
	Phrases []string
}{
	{"name", []string{
		"what is my name",
		"who am i",
		"tell me my name",
	}},
	{"age", []string{
		"what is my age",
		"how old am i",
		"tell me my age",
	}},
	{"location", []string{
		"where do i live",
		"where do i stay",
		"where am i from",
		"what is my location",
	}},
	{"role", []string{
		"what do i do",
		"what is my role",
		"what am i",
		"what is my profession",
	}},
	{"likes", []string{
		"what do i like",
		"what are my likes",
		"what do i like most",
		"tell me what i like",
		"my favorite food",
		"what is my favorite",
	}},
	{"dislikes", []string{
		"what do i hate",
		"what are my dislikes",
		"what i dont like",
		"what do i dislike",
	}},
	{"career_goal", []string{
		"my goal",
		"what is my goal",
		"career goal",
		"what do i want to become",
		"what am i aiming for",
	}},
	{"preferred_job_location", []string{
		"where do i want to work",
		"preferred job location",
		"job location",
		"where should i work",
	}},
	{"learning_style", []string{
		"how do i learn",
		"how do i learn best",
		"my learning style",
		"how do i understand things",
	}},
	{"skills", []string{
		"my skills",
		"what skills do i have",
		"list my skills",
	}},
	{"tools", []string{
		"tools i use",
		"what tools do i use",
		"which tools do i use",
	}},
}
