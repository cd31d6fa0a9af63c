package classifier

import "strings"

// phraseCatalog lists the cue phrases of one phrase-window feature.
type phraseCatalog struct {
	Type  FeatureType
	Left  [][]string
	Right [][]string
}

func phrases(ps ...string) [][]string {
	res := make([][]string, len(ps))
	for i, p := range ps {
		res[i] = strings.Fields(p)
	}
	return res
}

var phraseCatalogs = []phraseCatalog{
	{
		Type: PresentSpecial,
		Left: phrases(
			"with a history of", "found to have", "noted to have", "which showed",
			"also had", "complicated by", "status post", "notable for", "demonstrated",
			"given", "which revealed", "+", "continued to have", "patient has a history of",
			"showing", "setting of",
		),
	},
	{
		Type: AbsentSpecial,
		Left: phrases(
			"no evidence of", "had no", "showed no", "denied", "were no", "negative for",
			"he denies", "did not have", "having no", "he has no", "she had no", "denies any",
			"revealed no", "no signs of", "as having no", "out for", "patient denies",
			"patient had no", "she denies",
		),
	},
	{
		Type: PossibleSpecial,
		Left: phrases(
			"r/o", "questionable", "versus", "possible", "possibly", "probable", "presumed",
			"vs.", "r / o", "either", "representing", "exclude", "most likely", "likely have",
			"suspicion for", "question", "appears to be", "suggesting", "may have",
			"to likely have", "to rule out", "question of", "vs", "represent",
		),
		Right: phrases("versus", "vs", "vs."),
	},
	{
		Type: PossibleSpecial2,
		Left: phrases(
			"not rule out", "could be", "probably", "chance of", "were suggestive of",
			"is suggestive of", "checked for", "possibility of", "worrisome for", "may not be",
			"suspicion of", "may reflect", "questionable history of", "question of history of",
			"was evidence of", "most likely related to", "possibly was due to",
			"which was equivocal for", "probability of", "suspected to be", "presumptive",
		),
		Right: phrases(
			"not excluded", "difficult", "would be a consideration", "is possible",
			"also a possibility",
		),
	},
}

// matchLeft reports whether phrase ends right before position start.
func matchLeft(lower []string, start int, phrase []string) bool {
	n := len(phrase)
	if start < n {
		return false
	}
	for i, w := range phrase {
		if lower[start-n+i] != w {
			return false
		}
	}
	return true
}

// matchRight reports whether phrase begins right after position end.
func matchRight(lower []string, end int, phrase []string) bool {
	n := len(phrase)
	if end+n > len(lower)-1 {
		return false
	}
	for i, w := range phrase {
		if lower[end+1+i] != w {
			return false
		}
	}
	return true
}

// matches reports whether any cue of c sits next to the span.
func (c phraseCatalog) matches(lower []string, start, end int) bool {
	for _, p := range c.Left {
		if matchLeft(lower, start, p) {
			return true
		}
	}
	for _, p := range c.Right {
		if matchRight(lower, end, p) {
			return true
		}
	}
	return false
}
