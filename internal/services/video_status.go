package services

import (
	"strings"

	"github.com/cliplab/annotation-backend/internal/platform/envutil"
)

// VideoStatusSet is the allowed video lifecycle vocabulary. It is
// configuration rather than a closed enum: deployments have used both
// {pending,processing,completed,failed} and {pending,finished}, so the set
// comes from VIDEO_STATUSES and only membership is enforced.
type VideoStatusSet struct {
	values []string
	lookup map[string]struct{}
}

func NewVideoStatusSet(values []string) VideoStatusSet {
	set := VideoStatusSet{lookup: make(map[string]struct{}, len(values))}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := set.lookup[v]; ok {
			continue
		}
		set.values = append(set.values, v)
		set.lookup[v] = struct{}{}
	}
	return set
}

func LoadVideoStatusSet() VideoStatusSet {
	return NewVideoStatusSet(envutil.List("VIDEO_STATUSES",
		[]string{"pending", "processing", "completed", "failed"}))
}

func (s VideoStatusSet) Contains(v string) bool {
	_, ok := s.lookup[v]
	return ok
}

func (s VideoStatusSet) Values() []string { return s.values }

// Default is the initial status for new videos, the first configured value.
func (s VideoStatusSet) Default() string {
	if len(s.values) == 0 {
		return "pending"
	}
	return s.values[0]
}
