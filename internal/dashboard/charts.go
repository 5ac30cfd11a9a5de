package dashboard

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/IshaanNene/PostPulse/internal/types"
)

const maxCloudWords = 80

// renderCharts writes the engagement, sentiment and word cloud charts as
// one HTML page. The word cloud only covers comments labelled cloudSentiment.
func renderCharts(w io.Writer, data *Data, cloudSentiment string) error {
	page := components.NewPage()
	page.PageTitle = "PostPulse"
	page.AddCharts(
		engagementChart(data.Posts),
		sentimentChart(data.Comments),
		wordCloudChart(FilterBySentiment(data.Comments, cloudSentiment), cloudSentiment),
	)
	return page.Render(w)
}

// engagementChart stacks reactions, shares and harvested comments per post.
func engagementChart(posts []types.CleanPost) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Post engagement", Subtitle: "reactions, shares and harvested comments"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Post"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	x := make([]string, len(posts))
	reactions := make([]opts.BarData, len(posts))
	shares := make([]opts.BarData, len(posts))
	comments := make([]opts.BarData, len(posts))
	for i, p := range posts {
		x[i] = fmt.Sprintf("#%d", i+1)
		tip := truncate(p.Content, 100)
		reactions[i] = opts.BarData{Name: tip, Value: p.ReactionsCount}
		shares[i] = opts.BarData{Name: tip, Value: p.SharesCount}
		comments[i] = opts.BarData{Name: tip, Value: p.TotalCommentsCrawled}
	}

	stack := charts.WithBarChartOpts(opts.BarChart{Stack: "engagement"})
	bar.SetXAxis(x).
		AddSeries("Reactions", reactions, stack).
		AddSeries("Shares", shares, stack).
		AddSeries("Comments", comments, stack)
	return bar
}

// sentimentChart is a pie of the label distribution.
func sentimentChart(comments []types.LabeledComment) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "800px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Comment sentiment"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	counts := sentimentCounts(comments)
	items := make([]opts.PieData, len(counts))
	for i, c := range counts {
		items[i] = opts.PieData{Name: c.Label, Value: c.Count}
	}
	pie.AddSeries("Sentiment", items,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie
}

// wordCloudChart shows the most frequent words across comments.
func wordCloudChart(comments []types.LabeledComment, sentiment string) *charts.WordCloud {
	subtitle := "all comments"
	if s := strings.TrimSpace(sentiment); s != "" && !strings.EqualFold(s, "all") {
		subtitle = s + " comments"
	}
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Frequent words", Subtitle: subtitle}),
	)

	freq := wordFrequencies(comments, maxCloudWords)
	items := make([]opts.WordCloudData, len(freq))
	for i, f := range freq {
		items[i] = opts.WordCloudData{Name: f.word, Value: f.count}
	}
	wc.AddSeries("words", items,
		charts.WithWorldCloudChartOpts(opts.WordCloudChart{SizeRange: []float32{14, 72}}),
	)
	return wc
}

type wordCount struct {
	word  string
	count int
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "you": true, "this": true, "that": true,
	"is": true, "are": true, "to": true, "of": true, "in": true, "it": true, "on": true,
	"và": true, "là": true, "của": true, "có": true, "cho": true, "thì": true, "mà": true,
	"này": true, "với": true, "được": true, "các": true, "những": true, "một": true,
	"đã": true, "cũng": true, "để": true, "như": true, "từ": true, "khi": true, "ở": true,
}

// wordFrequencies returns the n most frequent words, ties broken
// alphabetically.
func wordFrequencies(comments []types.LabeledComment, n int) []wordCount {
	counts := make(map[string]int)
	for _, c := range comments {
		words := strings.FieldsFunc(strings.ToLower(c.Comment), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		for _, w := range words {
			if utf8.RuneCountInString(w) < 2 || stopWords[w] {
				continue
			}
			counts[w]++
		}
	}

	out := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, wordCount{word: w, count: c})
	}
	slices.SortFunc(out, func(a, b wordCount) int {
		if a.count != b.count {
			return cmp.Compare(b.count, a.count)
		}
		return strings.Compare(a.word, b.word)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
