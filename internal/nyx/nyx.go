// 包 nyx 为讨论 API 来源：按页（新→旧）拉取帖子，
// 以上一页最旧帖子的 ID 作为下一页的锚点。
package nyx

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"dohrano/internal/fetch"
	"dohrano/internal/logx"
	"dohrano/internal/model"
)

// Endpoint 描述讨论接口地址的组成部分。
type Endpoint struct {
	APIURL        string
	DiscussionID  string
	QueryBase     string
	QueryPrevious string // 含 {from_id} 占位符
}

// Source 为讨论 API 来源。
type Source struct {
	cl *fetch.Client
	ep Endpoint
}

func New(cl *fetch.Client, ep Endpoint) *Source {
	return &Source{cl: cl, ep: ep}
}

// page 为接口响应中本项目关心的部分。
type page struct {
	Posts []model.Post `json:"posts"`
}

// URL 返回某一页的请求地址；anchor 为空表示最新一页。
func (s *Source) URL(anchor model.PostID) string {
	u := strings.TrimRight(s.ep.APIURL, "/") + "/" + url.PathEscape(s.ep.DiscussionID)
	if s.ep.QueryBase != "" || anchor != "" {
		u += "?" + s.ep.QueryBase
	}
	if anchor != "" {
		u += strings.ReplaceAll(s.ep.QueryPrevious, "{from_id}", url.QueryEscape(string(anchor)))
	}
	return u
}

// Page 拉取一页帖子（新→旧）。
func (s *Source) Page(ctx context.Context, anchor model.PostID) ([]model.Post, error) {
	u := s.URL(anchor)
	log := logx.With("discussion", s.ep.DiscussionID, "anchor", string(anchor))
	log.Info("拉取讨论页", "url", u)
	var p page
	if err := s.cl.GetJSON(ctx, u, &p); err != nil {
		return nil, fmt.Errorf("fetch discussion %s: %w", s.ep.DiscussionID, err)
	}
	log.Debug("讨论页已解析", "posts", len(p.Posts))
	return p.Posts, nil
}
