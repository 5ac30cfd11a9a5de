package types

import (
	"strconv"
)

// Column names shared by every tabular export of posts and comments.
const (
	ColURL                  = "url"
	ColAuthor               = "author"
	ColContent              = "content"
	ColReactionsCount       = "reactions_count"
	ColCommentsCount        = "comments_count"
	ColSharesCount          = "shares_count"
	ColTotalCommentsCrawled = "total_comments_crawled"
	ColError                = "error"
	ColTotalEngagement      = "total_engagement"
	ColCommentText          = "comment_text"
	ColComment              = "comment"
	ColSentiment            = "sentiment"
)

// PostRecord is one row of the posts table produced by a crawl.
type PostRecord struct {
	// URL is the post link exactly as it was given to the crawler.
	URL string `json:"url" bson:"url"`

	// Author is the display name of the page or profile that published the post.
	Author string `json:"author" bson:"author"`

	// Content is the post body text. Empty for posts without text.
	Content string `json:"content" bson:"content"`

	ReactionsCount int `json:"reactions_count" bson:"reactions_count"`
	CommentsCount  int `json:"comments_count"  bson:"comments_count"`
	SharesCount    int `json:"shares_count"    bson:"shares_count"`

	// TotalCommentsCrawled is the number of comment rows harvested for this post.
	TotalCommentsCrawled int `json:"total_comments_crawled" bson:"total_comments_crawled"`

	// Error is set only when the whole post crawl failed.
	Error string `json:"error,omitempty" bson:"error,omitempty"`
}

// FailedPost returns the degraded record used when crawling url failed.
func FailedPost(url string, err error) PostRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PostRecord{URL: url, Error: msg}
}

// Failed reports whether the record carries a crawl error.
func (p PostRecord) Failed() bool { return p.Error != "" }

// Columns returns the header row for the posts table.
func (PostRecord) Columns() []string {
	return []string{
		ColURL, ColAuthor, ColContent,
		ColReactionsCount, ColCommentsCount, ColSharesCount,
		ColTotalCommentsCrawled, ColError,
	}
}

// Values returns the record as a row aligned with Columns.
func (p PostRecord) Values() []string {
	return []string{
		p.URL, p.Author, p.Content,
		strconv.Itoa(p.ReactionsCount), strconv.Itoa(p.CommentsCount), strconv.Itoa(p.SharesCount),
		strconv.Itoa(p.TotalCommentsCrawled), p.Error,
	}
}

// CommentRecord is one visible comment of a post. URL refers back to the
// owning PostRecord.
type CommentRecord struct {
	URL         string `json:"url"          bson:"url"`
	CommentText string `json:"comment_text" bson:"comment_text"`
}

func (CommentRecord) Columns() []string { return []string{ColURL, ColCommentText} }

func (c CommentRecord) Values() []string { return []string{c.URL, c.CommentText} }

// MetricKind identifies one of the engagement counters shown on a post.
type MetricKind string

const (
	MetricReactions MetricKind = "reactions"
	MetricComments  MetricKind = "comments"
	MetricShares    MetricKind = "shares"
)

// EngagementMetrics holds the counters read from a post page.
type EngagementMetrics struct {
	Reactions int
	Comments  int
	Shares    int
}

// Merge records a reading for kind, keeping the largest value seen so far.
func (m *EngagementMetrics) Merge(kind MetricKind, n int) {
	if n < 0 {
		return
	}
	switch kind {
	case MetricReactions:
		m.Reactions = max(m.Reactions, n)
	case MetricComments:
		m.Comments = max(m.Comments, n)
	case MetricShares:
		m.Shares = max(m.Shares, n)
	}
}
