package model

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// RecordsByAuthor 按作者首次出现的顺序保存记录。
type RecordsByAuthor struct {
	order []string
	m     map[string][]Record
}

func NewRecordsByAuthor() *RecordsByAuthor {
	return &RecordsByAuthor{m: make(map[string][]Record)}
}

// Add 追加记录到作者名下。
func (r *RecordsByAuthor) Add(rec Record) {
	if _, ok := r.m[rec.Author]; !ok {
		r.order = append(r.order, rec.Author)
	}
	r.m[rec.Author] = append(r.m[rec.Author], rec)
}

// Authors 返回作者列表（首次出现顺序）。
func (r *RecordsByAuthor) Authors() []string { return append([]string(nil), r.order...) }

func (r *RecordsByAuthor) Records(author string) []Record { return r.m[author] }

// Len 返回记录总数。
func (r *RecordsByAuthor) Len() int {
	n := 0
	for _, v := range r.m {
		n += len(v)
	}
	return n
}

// All 按作者顺序返回全部记录。
func (r *RecordsByAuthor) All() []Record {
	out := make([]Record, 0, r.Len())
	for _, a := range r.order {
		out = append(out, r.m[a]...)
	}
	return out
}

func (r *RecordsByAuthor) MarshalYAML() (any, error) {
	return orderedNode(r.order, func(k string) any { return r.m[k] })
}

// Summaries 为作者汇总的有序映射。
type Summaries struct {
	order []string
	m     map[string]AuthorSummary
}

func NewSummaries() *Summaries {
	return &Summaries{m: make(map[string]AuthorSummary)}
}

func (s *Summaries) Set(author string, v AuthorSummary) {
	if _, ok := s.m[author]; !ok {
		s.order = append(s.order, author)
	}
	s.m[author] = v
}

func (s *Summaries) Get(author string) (AuthorSummary, bool) {
	v, ok := s.m[author]
	return v, ok
}

func (s *Summaries) Authors() []string { return append([]string(nil), s.order...) }

func (s *Summaries) Len() int { return len(s.order) }

// SortByPlaytime 按总时长倒序排列，时长相同保持原顺序。
func (s *Summaries) SortByPlaytime() {
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.m[s.order[i]].Playtime > s.m[s.order[j]].Playtime
	})
}

// AuthorEntry 供模板按顺序遍历。
type AuthorEntry struct {
	Author string
	AuthorSummary
}

// Entries 按当前顺序返回汇总。
func (s *Summaries) Entries() []AuthorEntry {
	out := make([]AuthorEntry, 0, len(s.order))
	for _, a := range s.order {
		out = append(out, AuthorEntry{Author: a, AuthorSummary: s.m[a]})
	}
	return out
}

func (s *Summaries) MarshalYAML() (any, error) {
	return orderedNode(s.order, func(k string) any { return s.m[k] })
}

// orderedNode 构造保持键顺序的 YAML 映射节点。
func orderedNode(keys []string, value func(string) any) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		var v yaml.Node
		if err := v.Encode(value(k)); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &v)
	}
	return n, nil
}
