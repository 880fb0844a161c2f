package app

import "clipforge/internal/store"

// Partition splits channels into shared-topic groups and independents.
// A channel with a nil group id runs on its own; channels sharing a
// group id render the same topic in their own language and style.
func Partition(channels []store.Channel) (groups map[string][]store.Channel, independents []store.Channel) {
	groups = make(map[string][]store.Channel)
	for _, ch := range channels {
		if ch.GroupID == nil || *ch.GroupID == "" {
			independents = append(independents, ch)
			continue
		}
		groups[*ch.GroupID] = append(groups[*ch.GroupID], ch)
	}
	return groups, independents
}
