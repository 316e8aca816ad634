// 包 feeds 为 RSS/Atom/JSON Feed 来源：使用 gofeed 解析讨论的订阅，
// 归一化为 model.Post（新→旧）。订阅没有分页，只返回一页。
package feeds

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"dohrano/internal/fetch"
	"dohrano/internal/logx"
	"dohrano/internal/model"
)

// Source 为订阅来源。
type Source struct {
	cl  *fetch.Client
	url string
}

func New(cl *fetch.Client, feedURL string) *Source {
	return &Source{cl: cl, url: feedURL}
}

// Page 仅在首次请求（anchor 为空）时返回条目，之后返回空页。
func (s *Source) Page(ctx context.Context, anchor model.PostID) ([]model.Post, error) {
	if anchor != "" {
		return nil, nil
	}
	reqCtx, cancel := context.WithTimeout(ctx, 25*time.Second)
	defer cancel()
	logx.Infof("拉取订阅：%s", s.url)
	resp, err := s.cl.Get(reqCtx, s.url)
	if err != nil {
		return nil, fmt.Errorf("GET feed %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	return Parse(io.LimitReader(resp.Body, 16<<20))
}

// Parse 解析订阅内容并按发布时间倒序返回帖子；缺少时间的条目被丢弃。
func Parse(r io.Reader) ([]model.Post, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	posts := make([]model.Post, 0, len(feed.Items))
	for _, it := range feed.Items {
		t := pickTime(it.PublishedParsed, it.UpdatedParsed)
		if t.IsZero() {
			logx.Debugf("跳过缺少时间的条目：%s", it.Link)
			continue
		}
		posts = append(posts, model.Post{
			ID:         itemID(it),
			Username:   authorName(it),
			InsertedAt: model.Timestamp{Time: t.UTC()},
			Content:    pickContent(it),
		})
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].InsertedAt.After(posts[j].InsertedAt.Time) })
	return posts, nil
}

func itemID(it *gofeed.Item) model.PostID {
	if id := strings.TrimSpace(it.GUID); id != "" {
		return model.PostID(id)
	}
	return model.PostID(strings.TrimSpace(it.Link))
}

func pickContent(it *gofeed.Item) string {
	if it.Content != "" {
		return it.Content
	}
	return it.Description
}

func pickTime(a, b *time.Time) time.Time {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return time.Time{}
}

func authorName(it *gofeed.Item) string {
	if it.Author != nil {
		if it.Author.Name != "" {
			return strings.TrimSpace(it.Author.Name)
		}
		if it.Author.Email != "" {
			return strings.TrimSpace(it.Author.Email)
		}
	}
	for _, a := range it.Authors {
		if a != nil && a.Name != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	return ""
}
