package types

import "strconv"

// CleanPost is a post row after the cleaning stage.
type CleanPost struct {
	PostRecord `bson:",inline"`

	// TotalEngagement is reactions + shares + comments as displayed on the page.
	TotalEngagement int `json:"total_engagement" bson:"total_engagement"`
}

func (CleanPost) Columns() []string {
	return append(PostRecord{}.Columns(), ColTotalEngagement)
}

func (p CleanPost) Values() []string {
	return append(p.PostRecord.Values(), strconv.Itoa(p.TotalEngagement))
}

// CleanComment is a comment row after deduplication and emoji stripping.
type CleanComment struct {
	URL     string `json:"url"     bson:"url"`
	Comment string `json:"comment" bson:"comment"`
}

func (CleanComment) Columns() []string { return []string{ColURL, ColComment} }

func (c CleanComment) Values() []string { return []string{c.URL, c.Comment} }

// LabeledComment is a cleaned comment with its sentiment label.
type LabeledComment struct {
	URL       string `json:"url"       bson:"url"`
	Comment   string `json:"comment"   bson:"comment"`
	Sentiment string `json:"sentiment" bson:"sentiment"`
}

func (LabeledComment) Columns() []string { return []string{ColURL, ColComment, ColSentiment} }

func (c LabeledComment) Values() []string { return []string{c.URL, c.Comment, c.Sentiment} }
