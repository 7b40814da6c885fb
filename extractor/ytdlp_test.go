package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestIsRetryableRejectsPermanentErrors(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{ErrNotInstalled, false},
		{ErrSourceNotFound, false},
		{errors.New("temporary network blip"), true},
	}
	for _, c := range cases {
		if got := isRetryable(c.err); got != c.want {
			t.Errorf("isRetryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestParseYtdlpOutputExtractsVideos(t *testing.T) {
	data := []byte(`{
		"title": "My Channel - Videos",
		"uploader": "My Channel",
		"entries": [
			{"id": "aaaaaaaaaaa", "title": "one", "duration": 61.5},
			{"id": "bbbbbbbbbbb", "title": "two", "duration": 120}
		]
	}`)

	var playlist ytdlpPlaylist
	if err := json.Unmarshal(data, &playlist); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if playlist.Title != "My Channel - Videos" {
		t.Fatalf("Title = %q", playlist.Title)
	}
	if len(playlist.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(playlist.Entries))
	}
	if playlist.Entries[0].ID != "aaaaaaaaaaa" || playlist.Entries[0].Duration != 61.5 {
		t.Fatalf("entry 0 = %+v", playlist.Entries[0])
	}
}
