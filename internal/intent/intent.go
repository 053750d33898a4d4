// Package intent classifies chat input into memory, code and chat intents.
//
// Classification is pure: it never touches storage. The caller executes the
// resulting Plan in order and stops at the first intent that produces a reply.
package intent

import "strings"

// LikesKey is the memory key holding what the user likes.
const LikesKey = "user_likes"

// FactPrefix prefixes keys generated for facts without a recognizable relation.
const FactPrefix = "fact_"

// Relations are the verbs that split a general fact into subject and object.
// Order matters: earlier verbs win when several could match.
var Relations = []string{
	"likes", "prefers", "is", "has", "works at", "lives in",
	"enjoys", "hates", "loves", "wants",
}

// StartsWithRelation reports whether value begins with a relation verb
// followed by a space, e.g. "likes dogs".
func StartsWithRelation(value string) bool {
	for _, rel := range Relations {
		if strings.HasPrefix(value, rel+" ") {
			return true
		}
	}
	return false
}

// Kind identifies the rule an Intent came from.
type Kind int

const (
	KindNone Kind = iota
	KindSaveExact
	KindSaveLikes
	KindSaveGeneral
	KindQueryLikes
	KindQueryAttribute
	KindQueryDoYouKnow
	KindQueryWhatAbout
	KindEntity
	KindCodeRun
	KindCodeDebug
	KindCodeAnalyze
)

var kindNames = [...]string{
	KindNone:           "none",
	KindSaveExact:      "save_exact",
	KindSaveLikes:      "save_likes",
	KindSaveGeneral:    "save_general",
	KindQueryLikes:     "query_likes",
	KindQueryAttribute: "query_attribute",
	KindQueryDoYouKnow: "query_do_you_know",
	KindQueryWhatAbout: "query_what_about",
	KindEntity:         "entity",
	KindCodeRun:        "code_run",
	KindCodeDebug:      "code_debug",
	KindCodeAnalyze:    "code_analyze",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Intent is one classification result.
type Intent interface {
	Kind() Kind
}

// SaveExact stores "<subject> is <value>" verbatim.
type SaveExact struct {
	Key   string
	Value string
}

// SaveLikes stores what the user likes under LikesKey.
type SaveLikes struct {
	Value string
}

// SaveGeneral stores a free-form fact. When Relation is set the fact was
// split into Subject, Relation and Object; otherwise Key was generated.
type SaveGeneral struct {
	Key      string
	Value    string
	Fact     string
	Subject  string
	Relation string
	Object   string
}

// QueryLikes asks what the user likes.
type QueryLikes struct{}

// AttributeQuery asks for one stored attribute, e.g. "what is my bday".
type AttributeQuery struct {
	Form      Kind   // KindQueryAttribute, KindQueryDoYouKnow or KindQueryWhatAbout
	Word      string // question word for KindQueryAttribute
	Attribute string
}

// EntityQuery asks about an entity that may appear anywhere in memory.
type EntityQuery struct {
	Entity string
}

// CodeRun asks to execute a code block.
type CodeRun struct {
	Language string
	Code     string
}

// CodeDebug asks for help with failing code.
type CodeDebug struct {
	Language    string
	Code        string
	ErrorOutput string
}

// CodeAnalyze asks for an explanation or review of code.
type CodeAnalyze struct {
	Language string
	Code     string
	Task     string
}

func (SaveExact) Kind() Kind        { return KindSaveExact }
func (SaveLikes) Kind() Kind        { return KindSaveLikes }
func (SaveGeneral) Kind() Kind      { return KindSaveGeneral }
func (QueryLikes) Kind() Kind       { return KindQueryLikes }
func (q AttributeQuery) Kind() Kind { return q.Form }
func (EntityQuery) Kind() Kind      { return KindEntity }
func (CodeRun) Kind() Kind          { return KindCodeRun }
func (CodeDebug) Kind() Kind        { return KindCodeDebug }
func (CodeAnalyze) Kind() Kind      { return KindCodeAnalyze }

// CandidateKeys lists the keys probed for the attribute, in order.
func (q AttributeQuery) CandidateKeys() []string {
	return []string{q.Attribute, "my " + q.Attribute, "your " + q.Attribute}
}

// Plan holds at most one intent per stage, in execution order.
type Plan struct {
	Save   Intent // SaveExact, SaveLikes or SaveGeneral
	Query  Intent // QueryLikes or AttributeQuery
	Entity *EntityQuery
	Code   Intent // CodeRun, CodeDebug or CodeAnalyze
}

// Intents returns the populated stages in execution order.
func (p Plan) Intents() []Intent {
	var out []Intent
	if p.Save != nil {
		out = append(out, p.Save)
	}
	if p.Query != nil {
		out = append(out, p.Query)
	}
	if p.Entity != nil {
		out = append(out, *p.Entity)
	}
	if p.Code != nil {
		out = append(out, p.Code)
	}
	return out
}

// Empty reports whether no rule matched.
func (p Plan) Empty() bool {
	return len(p.Intents()) == 0
}
