package markup

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Segment
	}{
		{
			name:     "plain text only",
			input:    "Once upon a time.",
			expected: []Segment{{SegmentText, "Once upon a time."}},
		},
		{
			name:  "image between text",
			input: "See [img]http://x/1.jpg[/img] here",
			expected: []Segment{
				{SegmentText, "See "},
				{SegmentImage, "http://x/1.jpg"},
				{SegmentText, " here"},
			},
		},
		{
			name:  "image at start",
			input: "[img]http://x/1.jpg[/img]after",
			expected: []Segment{
				{SegmentImage, "http://x/1.jpg"},
				{SegmentText, "after"},
			},
		},
		{
			name:  "image at end",
			input: "before[img]http://x/1.jpg[/img]",
			expected: []Segment{
				{SegmentText, "before"},
				{SegmentImage, "http://x/1.jpg"},
			},
		},
		{
			name:  "two images back to back",
			input: "[img]http://x/1.jpg[/img][img]http://x/2.jpg[/img]",
			expected: []Segment{
				{SegmentImage, "http://x/1.jpg"},
				{SegmentImage, "http://x/2.jpg"},
			},
		},
		{
			name:     "unmatched opening tag is literal text",
			input:    "look [img]http://x/1.jpg",
			expected: []Segment{{SegmentText, "look "}, {SegmentText, "[img]http://x/1.jpg"}},
		},
		{
			name:     "empty url suppressed",
			input:    "a[img][/img]b",
			expected: []Segment{{SegmentText, "a"}, {SegmentText, "b"}},
		},
		{
			name:     "closing tag without opener is plain text",
			input:    "no tag [/img] here",
			expected: []Segment{{SegmentText, "no tag [/img] here"}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestImageURLs(t *testing.T) {
	input := "a [img]http://x/1.jpg[/img) b"
	// Note the broken closer above never matches, so no URL is found
	// until a real closer appears later in the string.
	if urls := ImageURLs(input); urls != nil {
		t.Errorf("expected no urls for unterminated tag, got %v", urls)
	}

	input = "a [img]http://x/1.jpg[/img] b [img]http://x/2.jpg[/img]"
	urls := ImageURLs(input)
	want := []string{"http://x/1.jpg", "http://x/2.jpg"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("ImageURLs = %v, want %v", urls, want)
	}
}

func TestPlainText(t *testing.T) {
	input := "See [img]http://x/1.jpg[/img] here"
	if got := PlainText(input); got != "See  here" {
		t.Errorf("PlainText = %q, want %q", got, "See  here")
	}
}

func TestParseIsRestartable(t *testing.T) {
	input := "x[img]u[/img]y"
	first := Parse(input)
	second := Parse(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Parse calls disagree: %v vs %v", first, second)
	}
}
