package media

import (
	"strings"
	"testing"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

1
00:00:00.000 --> 00:00:02.500
breaking news tonight

2
00:00:02.500 --> 00:00:05.000
breaking news tonight

3
00:00:05.000 --> 00:00:08.000
officials have confirmed the report

NOTE
This block is metadata and must be skipped

4
00:00:08.000 --> 00:00:11.000
more <c.colorCCCCCC>at</c> eleven
`

func TestParseVTT(t *testing.T) {
	got := ParseVTT(strings.NewReader(sampleVTT))
	want := "breaking news tonight officials have confirmed the report more at eleven"
	if got != want {
		t.Errorf("ParseVTT:\n got: %q\nwant: %q", got, want)
	}
}

func TestParseVTTEmpty(t *testing.T) {
	if got := ParseVTT(strings.NewReader("WEBVTT\n\n")); got != "" {
		t.Errorf("ParseVTT(header only) = %q, want empty", got)
	}
}

func TestParseVTTHourlessTimings(t *testing.T) {
	vtt := "WEBVTT\n\n00:01.000 --> 00:03.000\nshort form timings\n"
	got := ParseVTT(strings.NewReader(vtt))
	if got != "short form timings" {
		t.Errorf("ParseVTT = %q, want %q", got, "short form timings")
	}
}

func TestStripCueTags(t *testing.T) {
	got := stripCueTags("<00:00:01.000><c>hello</c> world")
	if got != "hello world" {
		t.Errorf("stripCueTags = %q, want %q", got, "hello world")
	}
}
