package textsearch

import (
	"strings"

	"github.com/rodruizronald/tw-search/internal/jobs"
)

// Stop words are stored accent-folded and lower-cased, the form tokens have
// when they are looked up.
var stopWords = map[jobs.Language]map[string]struct{}{
	jobs.LanguageEnglish: wordSet(`
		a about above after again against all am an and any are as at be
		because been before being below between both but by can did do does
		doing down during each few for from further had has have having he her
		here hers herself him himself his how i if in into is it its itself
		just me more most my myself no nor not now of off on once only or
		other our ours ourselves out over own same she should so some such
		than that the their theirs them themselves then there these they this
		those through to too under until up very was we were what when where
		which while who whom why will with you your yours yourself yourselves`),
	jobs.LanguageSpanish: wordSet(`
		a al algo algunas algunos ante antes como con contra cual cuando de
		del desde donde durante e el ella ellas ellos en entre era eran es esa
		esas ese eso esos esta estaba estan estar estas este esto estos fue
		fueron ha han hasta hay la las le les lo los mas me mi mis mucho muchos
		muy nada ni no nos nosotros o os otra otras otro otros para pero poco
		por porque que quien quienes se sea ser si sin sobre son su sus
		tambien tanto te tiene tienen todo todos tu tus un una uno unos y ya yo`),
}

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether the single token w is a stop word in lang.
func IsStopWord(lang jobs.Language, w string) bool {
	_, ok := stopWords[lang][strings.ToLower(foldAccents(w))]
	return ok
}
