package intent

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const codeLanguages = `(python|javascript|java|cpp|c|ruby|go)`

// fence matches a fenced block. The language tag is only taken when it is
// followed by a newline so inline blocks like "``` print(1) ```" keep their body.
const fence = "```(?:[\\w+#-]*\\n)?\\s*(.*?)\\s*```"

var (
	saveExactRe   = regexp.MustCompile(`^(?:remember|save|store)\s+that\s+(.*?)\s+is\s+(.*?)\s*$`)
	saveLikesRe   = regexp.MustCompile(`^(?:remember|save|store)\s+(?:that\s+)?i\s+like\s+(.*?)\s*$`)
	saveGeneralRe = regexp.MustCompile(`^(?:remember|save|store)(?: me to)?\s+(?:that\s+)?(.*?)\s*$`)
	relationRe    = regexp.MustCompile(`^(.*?)\s+(likes|prefers|is|has|works at|lives in|enjoys|hates|loves|wants)\s+(.*?)\s*$`)

	queryLikesRe     = regexp.MustCompile(`^(?:what do i like|what do you know i like|what are my likes)\s*\??$`)
	queryAttributeRe = regexp.MustCompile(`^(what|when|where|who) is (?:my|your)\s+(.*?)\s*$`)
	queryDoYouKnowRe = regexp.MustCompile(`^do you know (?:my|your)\s+(.*?)\s*$`)
	queryWhatAboutRe = regexp.MustCompile(`^what about (?:my|your)\s+(.*?)\s*$`)

	entityRe = regexp.MustCompile(`\b(?:tell me about|what do you know about|who is|what about|what does|info on|details on)\b\s+(.+?)(?:'s)?(?:\s+like|\s+prefer|\s+have|\s+work at|\s+live in|enjoys?|hates?|loves?|wants?)?(?:\?)?$`)

	codeRunRe     = regexp.MustCompile(`(?is)^(?:run|execute)(?: this)?\s+` + codeLanguages + `?\s*code:\s*` + fence)
	codeDebugRe   = regexp.MustCompile(`(?is)^(?:debug|fix|help with)(?: this)?(?: error)?(?: in my)?\s+` + codeLanguages + `?\s*code:\s*` + fence + `(?:\s*error:?\s*(.*?))?\s*$`)
	codeAnalyzeRe = regexp.MustCompile(`(?is)^(?:analyze|explain|what does)(?: this)?\s+` + codeLanguages + `?\s*code:\s*` + fence + `(?:\s*(.*?))?\s*$`)

	factKeyStrip = strings.NewReplacer(".", "", ",", "", "!", "", "?", "")
)

// Classifier turns raw chat input into a Plan.
type Classifier struct {
	suffix func() string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSuffix overrides the random suffix appended to generated fact keys.
func WithSuffix(fn func() string) Option {
	return func(c *Classifier) { c.suffix = fn }
}

// NewClassifier returns a Classifier with the given options.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{suffix: randomSuffix}
	for _, o := range opts {
		o(c)
	}
	return c
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}

// Classify runs every rule against input and returns the matches in priority
// order. Memory rules see the lower-cased input; code rules see the original
// so code bodies keep their case.
func (c *Classifier) Classify(input string) Plan {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	var p Plan
	p.Save = c.matchSave(lower)
	p.Query = matchQuery(lower)
	if p.Query == nil {
		if e, ok := matchEntity(lower); ok {
			p.Entity = &e
		}
	}
	p.Code = matchCode(trimmed)
	return p
}

// Classify is a convenience wrapper around a default Classifier.
func Classify(input string) Plan {
	return NewClassifier().Classify(input)
}

// matchSave returns the first save rule that yields a usable key and value.
func (c *Classifier) matchSave(lower string) Intent {
	if m := saveExactRe.FindStringSubmatch(lower); m != nil {
		key, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if key != "" && value != "" {
			return SaveExact{Key: key, Value: value}
		}
	}

	if m := saveLikesRe.FindStringSubmatch(lower); m != nil {
		if value := strings.TrimSpace(m[1]); value != "" {
			return SaveLikes{Value: value}
		}
	}

	if m := saveGeneralRe.FindStringSubmatch(lower); m != nil {
		fact := strings.TrimSpace(m[1])
		if fact == "" {
			return nil
		}
		if r := relationRe.FindStringSubmatch(fact); r != nil {
			subject, rel, object := strings.TrimSpace(r[1]), strings.TrimSpace(r[2]), strings.TrimSpace(r[3])
			if subject != "" && object != "" {
				return SaveGeneral{
					Key:      subject,
					Value:    rel + " " + object,
					Fact:     fact,
					Subject:  subject,
					Relation: rel,
					Object:   object,
				}
			}
		}
		return SaveGeneral{
			Key:   FactPrefix + factKeyPrefix(fact) + "_" + c.suffix(),
			Value: fact,
			Fact:  fact,
		}
	}
	return nil
}

// factKeyPrefix derives a short readable key from the first three words.
func factKeyPrefix(fact string) string {
	words := strings.Fields(fact)
	if len(words) > 3 {
		words = words[:3]
	}
	prefix := strings.ToLower(factKeyStrip.Replace(strings.Join(words, "_")))
	if len(prefix) > 30 {
		prefix = prefix[:30]
	}
	if prefix == "" {
		prefix = "general"
	}
	return prefix
}

// matchQuery returns the first query phrasing that matches structurally.
func matchQuery(lower string) Intent {
	if queryLikesRe.MatchString(lower) {
		return QueryLikes{}
	}
	if m := queryAttributeRe.FindStringSubmatch(lower); m != nil {
		if attr := strings.TrimSpace(m[2]); attr != "" {
			return AttributeQuery{Form: KindQueryAttribute, Word: m[1], Attribute: attr}
		}
	}
	if m := queryDoYouKnowRe.FindStringSubmatch(lower); m != nil {
		if attr := strings.TrimSpace(m[1]); attr != "" {
			return AttributeQuery{Form: KindQueryDoYouKnow, Attribute: attr}
		}
	}
	if m := queryWhatAboutRe.FindStringSubmatch(lower); m != nil {
		if attr := strings.TrimSpace(m[1]); attr != "" {
			return AttributeQuery{Form: KindQueryWhatAbout, Attribute: attr}
		}
	}
	return nil
}

func matchEntity(lower string) (EntityQuery, bool) {
	m := entityRe.FindStringSubmatch(lower)
	if m == nil {
		return EntityQuery{}, false
	}
	entity := strings.TrimSpace(m[1])
	if entity == "" {
		return EntityQuery{}, false
	}
	return EntityQuery{Entity: entity}, true
}

func matchCode(input string) Intent {
	if m := codeRunRe.FindStringSubmatch(input); m != nil {
		return CodeRun{
			Language: language(m[1], "python"),
			Code:     strings.TrimSpace(m[2]),
		}
	}
	if m := codeDebugRe.FindStringSubmatch(input); m != nil {
		return CodeDebug{
			Language:    language(m[1], "unknown"),
			Code:        strings.TrimSpace(m[2]),
			ErrorOutput: strings.TrimSpace(m[3]),
		}
	}
	if m := codeAnalyzeRe.FindStringSubmatch(input); m != nil {
		return CodeAnalyze{
			Language: language(m[1], "unknown"),
			Code:     strings.TrimSpace(m[2]),
			Task:     strings.TrimSpace(m[3]),
		}
	}
	return nil
}

func language(captured, fallback string) string {
	if captured == "" {
		return fallback
	}
	return strings.ToLower(captured)
}
