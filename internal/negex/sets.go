package negex

func set(phrases ...string) map[string]bool {
	m := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		m[p] = true
	}
	return m
}

func getPreNegations() map[string]bool {
	return set(
		"no", "not", "without", "denies", "denied", "deny", "denying", "declined", "declines",
		"absence of", "negative for", "free of", "no evidence of", "no signs of", "no sign of",
		"fails to reveal", "failed to reveal", "never had", "rules out", "ruled out", "no new",
		"no further", "not demonstrate", "does not exhibit", "no suspicious", "negative",
		"neither", "nor", "absent", "no complaints of", "not have", "did not have",
		"no history of", "without evidence of", "without any evidence of",
	)
}

func getPostNegations() map[string]bool {
	return set(
		"unlikely", "was ruled out", "is ruled out", "are ruled out", "have been ruled out",
		"has been ruled out", "free", "was negative", "were negative", "not seen", "not present",
	)
}

func getPseudoNegations() map[string]bool {
	return set(
		"no increase", "no change", "no suspicious change", "no significant change", "not only",
		"not necessarily", "not cause", "not drain", "not certain if", "not certain whether",
		"without difficulty", "gram negative", "no interval change", "not extend",
		"not ruled out", "not been ruled out",
	)
}

func getTerminations() map[string]bool {
	return set(
		"but", "however", "although", "though", "yet", "except", "aside from", "apart from",
		"secondary to", "cause of", "source of", "etiology of", "reason for", "which", "who",
		"still", "nevertheless", "presents", "patient",
	)
}
