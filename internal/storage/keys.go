package storage

// DefaultNamespace prefixes every key the store writes.
const DefaultNamespace = "scrape"

// keyspace builds the persisted layout:
//
//	<ns>:data:<id>        serialized record
//	<ns>:categories       set of category names
//	<ns>:category:<name>  set of ids
//	<ns>:labels           set of label names
//	<ns>:label:<name>     set of ids
type keyspace struct {
	ns string
}

func (k keyspace) data(id string) string { return k.ns + ":data:" + id }
func (k keyspace) dataPattern() string { return k.ns + ":data:*" }
func (k keyspace) categories() string { return k.ns + ":categories" }
func (k keyspace) category(name string) string { return k.ns + ":category:" + name }
func (k keyspace) labels() string { return k.ns + ":labels" }
func (k keyspace) label(name string) string { return k.ns + ":label:" + name }
func (k keyspace) all() string { return k.ns + ":*" }

// indexRef is one index set a record belongs to, with the universe set that
// lists the index name.
type indexRef struct {
	key      string
	universe string
	name     string
}

func (k keyspace) refs(category string, labels []string) []indexRef {
	refs := make([]indexRef, 0, len(labels)+1)
	refs = append(refs, indexRef{key: k.category(category), universe: k.categories(), name: category})

	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		refs = append(refs, indexRef{key: k.label(l), universe: k.labels(), name: l})
	}
	return refs
}
