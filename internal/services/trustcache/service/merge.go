package service

import "circlesync/internal/services/trustcache/domain"

// dedupe keeps one record per folded address, preferring the later observation
// first-seen order is preserved
func dedupe(users []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, 0, len(users))
	idx := make(map[string]int, len(users))
	for _, p := range users {
		k := p.Key()
		if i, ok := idx[k]; ok {
			if !older(p, out[i]) {
				out[i] = p
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, p)
	}
	return out
}

// merge applies fresh observations onto the existing snapshot
// existing records are updated in place when counts or verification changed and the
// observation is not older; unmatched observations are appended as new
// no existing record is ever dropped
func merge(existing []domain.Participant, observed []domain.Participant) (out []domain.Participant, newCount, updatedCount int) {
	out = dedupe(existing)
	idx := make(map[string]int, len(out))
	for i, p := range out {
		idx[p.Key()] = i
	}
	for _, obs := range observed {
		k := obs.Key()
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, obs)
			newCount++
			continue
		}
		cur := &out[i]
		if older(obs, *cur) || !changed(*cur, obs) {
			continue
		}
		cur.IncomingTrustCount = obs.IncomingTrustCount
		cur.OutgoingTrustCount = obs.OutgoingTrustCount
		cur.Verified = obs.Verified
		cur.Status = obs.Status
		if !obs.ObservedAt.IsZero() {
			cur.ObservedAt = obs.ObservedAt
		}
		updatedCount++
	}
	return out, newCount, updatedCount
}

// older reports whether a is known to predate b; a zero time on either side is unordered
func older(a, b domain.Participant) bool {
	if a.ObservedAt.IsZero() || b.ObservedAt.IsZero() {
		return false
	}
	return a.ObservedAt.Before(b.ObservedAt)
}

func changed(a, b domain.Participant) bool {
	return a.IncomingTrustCount != b.IncomingTrustCount ||
		a.OutgoingTrustCount != b.OutgoingTrustCount ||
		a.Verified != b.Verified
}
