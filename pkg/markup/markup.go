// Package markup splits raw story text into text and image segments.
//
// Story text supports a single inline tag, [img]URL[/img]. Tags do not
// nest; the first closing tag after an opener terminates the image
// reference regardless of content.
package markup

import "strings"

const (
	openTag  = "[img]"
	closeTag = "[/img]"
)

// SegmentKind identifies the type of a parsed segment.
type SegmentKind int

const (
	// SegmentText is a run of plain narrative text.
	SegmentText SegmentKind = iota

	// SegmentImage is an image reference; Content holds the URL.
	SegmentImage
)

// Segment is one piece of parsed story text, in display order.
type Segment struct {
	Kind    SegmentKind
	Content string
}

// Parse scans input left to right and returns its ordered segments.
// An opening tag with no matching closer is kept as literal text, so
// malformed markup never fails, it just renders verbatim. Zero-length
// text segments and empty image URLs are suppressed.
func Parse(input string) []Segment {
	var segments []Segment

	pos := 0
	for pos < len(input) {
		start := strings.Index(input[pos:], openTag)
		if start == -1 {
			if rest := input[pos:]; rest != "" {
				segments = append(segments, Segment{Kind: SegmentText, Content: rest})
			}
			break
		}
		start += pos

		if start > pos {
			segments = append(segments, Segment{Kind: SegmentText, Content: input[pos:start]})
		}

		end := strings.Index(input[start+len(openTag):], closeTag)
		if end == -1 {
			// No closing tag, treat the remainder as plain text.
			segments = append(segments, Segment{Kind: SegmentText, Content: input[start:]})
			break
		}
		end += start + len(openTag)

		if url := input[start+len(openTag) : end]; url != "" {
			segments = append(segments, Segment{Kind: SegmentImage, Content: url})
		}

		pos = end + len(closeTag)
	}

	return segments
}

// ImageURLs returns the URLs of all well-formed image tags in input,
// in left-to-right order.
func ImageURLs(input string) []string {
	var urls []string
	for _, seg := range Parse(input) {
		if seg.Kind == SegmentImage {
			urls = append(urls, seg.Content)
		}
	}
	return urls
}

// PlainText returns the concatenated text segments of input, with all
// image tags removed.
func PlainText(input string) string {
	var b strings.Builder
	for _, seg := range Parse(input) {
		if seg.Kind == SegmentText {
			b.WriteString(seg.Content)
		}
	}
	return b.String()
}
