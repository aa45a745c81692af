package pattern

import "strings"

// synonymGroups maps a canonical entity name to its common surface
// variations. Matching any variation folds the mention into the canonical
// entity instead of creating a duplicate.
var synonymGroups = map[string][]string{
	"user":        {"customer", "client", "end-user", "person", "individual"},
	"admin":       {"administrator", "sys-admin", "system-admin", "manager"},
	"api":         {"endpoint", "interface", "rest-api", "web-service"},
	"database":    {"db", "data-store", "repository"},
	"application": {"app", "software", "program"},
	"data":        {"information", "content"},
	"file":        {"attachment"},
	"process":     {"procedure", "operation"},
	"request":     {"call", "query", "command"},
	"response":    {"reply", "result", "output", "answer"},
}

// synonymIndex resolves a surface form to its canonical group name.
var synonymIndex = func() map[string]string {
	idx := make(map[string]string)
	for canonical, alts := range synonymGroups {
		for _, alt := range alts {
			idx[normalizeKey(alt)] = canonical
		}
	}
	return idx
}()

// SynonymGroups returns the canonical-name to variations table. Callers
// must not mutate the returned map.
func SynonymGroups() map[string][]string {
	return synonymGroups
}

// CanonicalGroup resolves a surface form to its synonym group's canonical
// name. Returns false if the form belongs to no group.
func CanonicalGroup(surface string) (string, bool) {
	canonical, ok := synonymIndex[normalizeKey(surface)]
	return canonical, ok
}

func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
