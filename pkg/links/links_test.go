package links

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []Anchor
	}{
		{
			name: "simple anchors",
			html: `<html><body>
				<a href="/taxforms/01-114.pdf">01-114 Sales Tax Return</a>
				<a href="/about">About Us</a>
			</body></html>`,
			want: []Anchor{
				{Href: "/taxforms/01-114.pdf", Text: "01-114 Sales Tax Return"},
				{Href: "/about", Text: "About Us"},
			},
		},
		{
			name: "anchor without href is skipped",
			html: `<a name="top">Top</a><a href="x.pdf">X</a>`,
			want: []Anchor{{Href: "x.pdf", Text: "X"}},
		},
		{
			name: "empty href is skipped",
			html: `<a href="">nothing</a><a href="   ">blank</a>`,
			want: nil,
		},
		{
			name: "malformed markup still recovers anchors",
			html: `<div><a href="/a.pdf">A</a><p>unclosed<a href="/b.pdf">B`,
			want: []Anchor{
				{Href: "/a.pdf", Text: "A"},
				{Href: "/b.pdf", Text: "B"},
			},
		},
		{
			name: "no anchors",
			html: `<p>plain text only</p>`,
			want: nil,
		},
		{
			name: "empty input",
			html: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]byte(tt.html))
			if len(got) != len(tt.want) {
				t.Fatalf("Extract() returned %d anchors, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("anchor %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("<<<>>>"),
		[]byte("\x00\x01\x02"),
		[]byte("<a href="),
	}
	for _, in := range inputs {
		// Lenient parsing: garbage in, empty (or partial) slice out.
		_ = Extract(in)
	}
}
