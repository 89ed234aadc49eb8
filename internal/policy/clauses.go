// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// headingPattern matches structural headings: "Article 5", "Art. 5",
// "Section 3", "§ 3".
var headingPattern = regexp.MustCompile(`(?i)^(article|art\.?|section|sec\.?|§)\s*(\d+[a-z]?)\b`)

// subPointPattern matches top-level numbered sub-points within an
// article: "1." or "(1)". Lettered points like "(a)" stay inside their
// parent sub-point; sub-article is the finest indexing granularity.
var subPointPattern = regexp.MustCompile(`^(?:(\d+)\.|\((\d+)\))\s+`)

// ParseClauses splits a normalized policy document into clauses keyed
// by structural reference. Policies with Article/Section headings yield
// one clause per article, or per numbered sub-point when an article has
// them. Text with no recognizable structure falls back to one clause
// per paragraph with sequential IDs (C1, C2, ...). Every clause records
// the byte span of its text in the source document.
func ParseClauses(policyText string) []types.PolicyClause {
	articles := splitArticles(policyText)
	if len(articles) == 0 {
		return paragraphClauses(policyText)
	}

	var clauses []types.PolicyClause
	for _, a := range articles {
		clauses = append(clauses, a.clauses()...)
	}
	return clauses
}

// article is one heading-delimited region of the policy.
type article struct {
	kind   string // "Art" or "Sec"
	number string
	body   []segment
}

// segment is a run of lines with its byte span.
type segment struct {
	text  string
	start int
	end   int
}

// splitArticles scans for structural headings and collects the body
// segments under each. Returns nil when the text has no headings.
func splitArticles(text string) []article {
	var articles []article
	offset := 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
			kind := "Art"
			if k := strings.ToLower(m[1]); strings.HasPrefix(k, "sec") || k == "§" {
				kind = "Sec"
			}
			articles = append(articles, article{kind: kind, number: m[2]})
		} else if len(articles) > 0 && trimmed != "" {
			cur := &articles[len(articles)-1]
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			cur.body = append(cur.body, segment{
				text:  trimmed,
				start: offset + indent,
				end:   offset + indent + len(trimmed),
			})
		}

		offset += len(line) + 1
	}

	return articles
}

// clauses converts one article into indexable clauses: one per numbered
// sub-point, or the whole body when the article has none.
func (a article) clauses() []types.PolicyClause {
	var out []types.PolicyClause

	var cur *types.PolicyClause
	var intro []string
	introSpan := types.Span{Start: -1}

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, seg := range a.body {
		if m := subPointPattern.FindStringSubmatch(seg.text); m != nil {
			flush()
			num := m[1]
			if num == "" {
				num = m[2]
			}
			cur = &types.PolicyClause{
				ID:         fmt.Sprintf("%s%s(%s)", a.kind, a.number, num),
				ArticleRef: fmt.Sprintf("%s %s(%s)", a.refWord(), a.number, num),
				Text:       subPointPattern.ReplaceAllString(seg.text, ""),
				Span:       types.Span{Start: seg.start, End: seg.end},
			}
			continue
		}

		if cur != nil {
			cur.Text += "\n" + seg.text
			cur.Span.End = seg.end
		} else {
			intro = append(intro, seg.text)
			if introSpan.Start < 0 {
				introSpan.Start = seg.start
			}
			introSpan.End = seg.end
		}
	}
	flush()

	// An article without sub-points is one clause. With sub-points the
	// intro lines (typically the article title) are not separately
	// retrievable; the sub-points carry the obligations.
	if len(out) == 0 && len(intro) > 0 {
		out = append(out, types.PolicyClause{
			ID:         fmt.Sprintf("%s%s", a.kind, a.number),
			ArticleRef: fmt.Sprintf("%s %s", a.refWord(), a.number),
			Text:       strings.Join(intro, "\n"),
			Span:       introSpan,
		})
	}

	return out
}

func (a article) refWord() string {
	if a.kind == "Sec" {
		return "Section"
	}
	return "Article"
}

// paragraphClauses is the fallback for unstructured policies: one
// clause per blank-line delimited paragraph.
func paragraphClauses(text string) []types.PolicyClause {
	var out []types.PolicyClause
	offset := 0
	var cur []string
	var start, end int

	flush := func() {
		body := strings.TrimSpace(strings.Join(cur, "\n"))
		if body != "" {
			n := len(out) + 1
			out = append(out, types.PolicyClause{
				ID:         fmt.Sprintf("C%d", n),
				ArticleRef: fmt.Sprintf("Clause %d", n),
				Text:       body,
				Span:       types.Span{Start: start, End: end},
			})
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
		} else {
			if len(cur) == 0 {
				start = offset
			}
			cur = append(cur, trimmed)
			end = offset + len(line)
		}
		offset += len(line) + 1
	}
	flush()

	return out
}
