package chat

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/search"
)

const noContextFound = "No relevant information found."

// FormatContext renders multi-corpus search results into one context block:
// summaries, then transcript segments, then feature requests. Output is a
// pure function of the input, so repeated calls are byte-identical.
func FormatContext(results *search.Results) string {
	if results == nil || results.Empty() {
		return noContextFound
	}

	var sb strings.Builder

	if len(results.Summaries) > 0 {
		sb.WriteString("📝 Related call summaries:\n\n")
		for _, summary := range results.Summaries {
			writeCallItem(&sb, summary)
		}
	}

	if len(results.Segments) > 0 {
		sb.WriteString("🎯 Relevant transcript segments:\n\n")
		for _, segment := range results.Segments {
			writeCallItem(&sb, segment)
		}
	}

	if len(results.Features) > 0 {
		sb.WriteString("✨ Related feature requests:\n\n")
		for _, feature := range results.Features {
			fmt.Fprintf(&sb, "Request %d:\n", feature.CallId)
			fmt.Fprintf(&sb, "Feature: %s\n", feature.Request)
			fmt.Fprintf(&sb, "Customer Quote: %q\n", feature.Context)
			fmt.Fprintf(&sb, "Priority: %s\n\n", feature.Priority)
		}
	}

	return strings.TrimSpace(sb.String())
}

func writeCallItem(sb *strings.Builder, result *core.SearchResult) {
	title := result.Title
	if title == "" {
		title = "No title available"
	}
	fmt.Fprintf(sb, "Call %d - %s:\n%s\n\n", result.CallId, title, result.Content)
}

// citation is one referenced call.
type citation struct {
	callId core.ID
	title  string
}

// FormatResponse appends a source list to a model reply, citing only the
// retrieved calls the reply actually mentions by id or title. A reply that
// already carries a "Sources:" marker is returned unchanged.
func FormatResponse(reply string, results *search.Results) string {
	if results == nil || strings.Contains(reply, "Sources:") {
		return reply
	}

	cited := make(map[core.ID]citation)
	for _, group := range [][]*core.SearchResult{results.Summaries, results.Segments, results.Features} {
		for _, result := range group {
			if _, ok := cited[result.CallId]; ok {
				continue
			}
			if mentions(reply, result) {
				cited[result.CallId] = citation{callId: result.CallId, title: result.Title}
			}
		}
	}
	if len(cited) == 0 {
		return reply
	}

	citations := make([]citation, 0, len(cited))
	for _, c := range cited {
		citations = append(citations, c)
	}
	slices.SortFunc(citations, func(a, b citation) int {
		return int(a.callId) - int(b.callId)
	})

	var sb strings.Builder
	sb.WriteString(reply)
	sb.WriteString("\n\nSources:\n")
	for _, c := range citations {
		title := c.title
		if title == "" {
			title = "No title available"
		}
		fmt.Fprintf(&sb, "- Call %d - %s\n", c.callId, title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// mentions reports whether the reply references a result's call by id or by
// title. Titles match on the whole string or on any "|"-separated component,
// since replies usually name the account rather than the full call title.
func mentions(reply string, result *core.SearchResult) bool {
	if containsNumber(reply, strconv.FormatUint(uint64(result.CallId), 10)) {
		return true
	}
	if result.Title == "" {
		return false
	}
	if strings.Contains(reply, result.Title) {
		return true
	}
	for _, part := range strings.Split(result.Title, "|") {
		part = strings.TrimSpace(part)
		if part != "" && strings.Contains(reply, part) {
			return true
		}
	}
	return false
}

// containsNumber reports whether text contains number as a standalone digit
// run, so call id 5 does not match a mention of call 15.
func containsNumber(text, number string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], number)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(number)
		beforeOK := idx == 0 || !isDigit(text[idx-1])
		afterOK := end == len(text) || !isDigit(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
