package registry

import "sort"

// indexEntry pairs an identity with its ordering keys. seq is the registration
// sequence number, used as the stable tie-break when priorities are equal.
type indexEntry struct {
	identity string
	priority int
	seq      int
}

// capabilityIndex maps capability names to identities, ordered by priority
// descending with registration order breaking ties. The ordering is
// deterministic so resolution is reproducible across runs.
type capabilityIndex map[string][]indexEntry

func (ix capabilityIndex) insert(capability, identity string, priority, seq int) {
	bucket := append(ix[capability], indexEntry{identity: identity, priority: priority, seq: seq})
	sort.SliceStable(bucket, func(i, j int) bool {
		if bucket[i].priority != bucket[j].priority {
			return bucket[i].priority > bucket[j].priority
		}
		return bucket[i].seq < bucket[j].seq
	})
	ix[capability] = bucket
}

func (ix capabilityIndex) remove(identity string) {
	for capability, bucket := range ix {
		kept := bucket[:0]
		for _, e := range bucket {
			if e.identity != identity {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(ix, capability)
		} else {
			ix[capability] = kept
		}
	}
}

// candidates returns identities for a capability in resolution order,
// or nil if the capability was never registered.
func (ix capabilityIndex) candidates(capability string) []string {
	bucket, ok := ix[capability]
	if !ok {
		return nil
	}
	ids := make([]string, len(bucket))
	for i, e := range bucket {
		ids[i] = e.identity
	}
	return ids
}
