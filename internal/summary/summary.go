// Package summary derives the aggregate room view from a result
// snapshot. It is pure: no state, no locking, deterministic output for
// a given input.
package summary

import (
	"math"
	"sort"

	"github.com/bmmjam/taptap/internal/model"
)

const barSlots = 10

// Summarize counts emotions over the snapshot and picks the dominant
// one. Ties are broken by the canonical emotion order; labels outside
// the canonical set sort after it, by label, so repeated calls always
// agree. An empty snapshot yields Summary{Total: 0} — the "no
// submissions yet" state, not an error.
func Summarize(results []model.Result) model.Summary {
	s := model.Summary{
		Total:  len(results),
		Counts: make(map[model.Emotion]int, len(model.CanonicalEmotions)),
	}
	if s.Total == 0 {
		return s
	}

	for _, r := range results {
		s.Counts[r.Emotion]++
	}

	emotions := make([]model.Emotion, 0, len(s.Counts))
	for e := range s.Counts {
		emotions = append(emotions, e)
	}
	sort.Slice(emotions, func(i, j int) bool {
		ci, cj := s.Counts[emotions[i]], s.Counts[emotions[j]]
		if ci != cj {
			return ci > cj
		}
		ri, rj := canonicalRank(emotions[i]), canonicalRank(emotions[j])
		if ri != rj {
			return ri < rj
		}
		return emotions[i] < emotions[j]
	})

	s.Dominant = emotions[0]
	s.Bars = make([]model.Bar, 0, len(emotions))
	for _, e := range emotions {
		count := s.Counts[e]
		s.Bars = append(s.Bars, model.Bar{
			Emotion: e,
			Percent: percent(count, s.Total),
			Length:  barLength(count, s.Total),
		})
	}
	return s
}

func percent(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}

// barLength never returns 0: an emotion that was submitted at least
// once always gets a visible bar.
func barLength(count, total int) int {
	n := int(math.Round(float64(count) / float64(total) * barSlots))
	if n < 1 {
		return 1
	}
	return n
}

// canonicalRank orders the canonical six first; anything else lands
// after them and falls back to label comparison in the sort.
func canonicalRank(e model.Emotion) int {
	for i, c := range model.CanonicalEmotions {
		if c == e {
			return i
		}
	}
	return len(model.CanonicalEmotions)
}
