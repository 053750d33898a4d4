package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/ryan/internal/intent"
)

// ContextHeader opens every assembled memory block.
const ContextHeader = "Relevant Memory:\n"

var subjectReplacer = strings.NewReplacer("_s", "", intent.FactPrefix, "")

// Relevant returns the entries that mention entity. The scan is a plain
// substring match over keys and values and may over-match.
func Relevant(all map[string]string, entity string) map[string]string {
	entity = strings.ToLower(strings.TrimSpace(entity))
	out := map[string]string{}
	if entity == "" {
		return out
	}
	sanitized := Sanitize(entity)

	for key, value := range all {
		k := strings.ToLower(key)
		v := strings.ToLower(value)
		switch {
		case strings.Contains(k, entity), strings.Contains(v, entity):
		case k == intent.LikesKey && strings.Contains(v, entity):
		case sanitized != "" && strings.Contains(k, sanitized):
		case strings.Contains(k, "my "+entity), strings.Contains(k, sanitized+"_s"):
		default:
			continue
		}
		out[key] = value
	}
	return out
}

// Assemble renders entries as a memory block for a prompt, sorted by key.
// It returns "" when there is nothing to render.
func Assemble(entries map[string]string) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(ContextHeader)
	for _, key := range sortedKeys(entries) {
		fmt.Fprintf(&b, "- %s\n", Label(key, entries[key]))
	}
	b.WriteString("\n")
	return b.String()
}

// Label renders one entry the way it appears in an assembled block.
func Label(key, value string) string {
	switch {
	case key == intent.LikesKey:
		return "User likes: " + value
	case strings.HasPrefix(key, intent.FactPrefix):
		return value
	case intent.StartsWithRelation(value):
		if subject := subjectFromKey(key); subject != "" {
			return subject + " " + value
		}
	}
	return key + ": " + value
}

func subjectFromKey(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(subjectReplacer.Replace(key), "_", " "))
}

// Listing renders every entry as "- key: value" for code-assistant prompts.
func Listing(entries map[string]string) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range sortedKeys(entries) {
		fmt.Fprintf(&b, "- %s: %s\n", key, entries[key])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
