package music

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardnews/common"
)

func TestTagsForTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"Funny cartoon cats", "pop,happy"},
		{"AI startups raise money", "electronic,upbeat"},
		{"Today's market update", "pop,upbeat"},
		{"Meditation for beginners", "calm,relaxation"},
		{"Wedding season", "romantic,pop"},
		{"He said it rained", "pop,happy"},
		{"kids and robots", "pop,happy"},
		{"", "pop,happy"},
	}
	for _, c := range cases {
		if got := strings.Join(TagsForTopic(c.topic), ","); got != c.want {
			t.Errorf("TagsForTopic(%q) = %s, want %s", c.topic, got, c.want)
		}
	}
}

func TestTagsForTopicReturnsCopy(t *testing.T) {
	tags := TagsForTopic("nothing matches here")
	tags[0] = "metal"
	if DefaultTags[0] != "pop" {
		t.Fatal("default tags were modified through the returned slice")
	}
}

func TestParseSuggestedTags(t *testing.T) {
	got := ParseSuggestedTags("['Electronic', 'upbeat', 'techno', 'upbeat', 'happy']")
	if strings.Join(got, ",") != "electronic,upbeat,happy" {
		t.Errorf("got %v", got)
	}
	if len(ParseSuggestedTags("I cannot help with that")) != 0 {
		t.Error("expected no tags")
	}
}

type cannedLLM struct {
	answer string
	err    error
}

func (c cannedLLM) Generate(context.Context, common.Prompt) (string, error) { return c.answer, c.err }
func (c cannedLLM) Close() error                                            { return nil }

func TestSuggestTagsFallsBack(t *testing.T) {
	ctx := context.Background()
	if got := SuggestTags(ctx, cannedLLM{answer: "jazz, chill"}, "anything"); strings.Join(got, ",") != "jazz,chill" {
		t.Errorf("model tags = %v", got)
	}
	if got := SuggestTags(ctx, cannedLLM{answer: "no idea"}, "robot news"); strings.Join(got, ",") != "electronic,upbeat" {
		t.Errorf("unparseable answer = %v", got)
	}
	if got := SuggestTags(ctx, cannedLLM{err: errors.New("boom")}, "party tonight"); strings.Join(got, ",") != "party,energetic" {
		t.Errorf("failed call = %v", got)
	}
	if got := SuggestTags(ctx, nil, ""); strings.Join(got, ",") != "pop,happy" {
		t.Errorf("empty text = %v", got)
	}
}

// fakeJamendo answers only for the tags in hits and serves a download.
func fakeJamendo(t *testing.T, hits map[string]bool, queried *[]string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download.mp3" {
			w.Write([]byte("ID3-fake-mp3"))
			return
		}
		q := r.URL.Query()
		if q.Get("client_id") != "cid" || q.Get("featured") != "1" || q.Get("order") != "popularity_total" {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}
		tag := q.Get("tags")
		*queried = append(*queried, tag)
		if !hits[tag] {
			w.Write([]byte(`{"results": []}`))
			return
		}
		fmt.Fprintf(w, `{"results": [
			{"name": "No Link", "artist_name": "A", "audiodownload": ""},
			{"name": "Sunny Day / Remix", "artist_name": "B", "audiodownload": "%s/download.mp3", "duration": 120}
		]}`, srv.URL)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchFallsThroughStrategies(t *testing.T) {
	var queried []string
	srv := fakeJamendo(t, map[string]bool{"electronic": true}, &queried)
	j := NewJamendoClient("cid")
	j.BaseURL = srv.URL

	tracks, err := j.Search(context.Background(), []string{"romantic"}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks", len(tracks))
	}
	// the featured strategy keeps collecting until it has enough tracks
	want := "romantic,lounge,classical,electronic,jazz,pop"
	if strings.Join(queried, ",") != want {
		t.Errorf("queried %v, want %s", queried, want)
	}
}

func TestSearchUntaggedLastResort(t *testing.T) {
	var queried []string
	srv := fakeJamendo(t, map[string]bool{"": true}, &queried)
	j := NewJamendoClient("cid")
	j.BaseURL = srv.URL

	tracks, err := j.Search(context.Background(), nil, 5)
	if err != nil || len(tracks) == 0 {
		t.Fatalf("Search = %v, %v", tracks, err)
	}
	if queried[len(queried)-1] != "" {
		t.Errorf("last query should be untagged: %v", queried)
	}
}

func TestSearchRequiresClientID(t *testing.T) {
	_, err := NewJamendoClient("").Search(context.Background(), nil, 5)
	if !errors.Is(err, common.ErrMissingCredential) {
		t.Errorf("err = %v", err)
	}
}

func TestSelectAndDownload(t *testing.T) {
	var queried []string
	srv := fakeJamendo(t, map[string]bool{"pop": true}, &queried)
	j := NewJamendoClient("cid")
	j.BaseURL = srv.URL
	dir := t.TempDir()

	info, err := j.SelectAndDownload(context.Background(), []string{"pop"}, dir)
	if err != nil {
		t.Fatalf("SelectAndDownload: %v", err)
	}
	if info.Title != "Sunny Day / Remix" || info.Artist != "B" {
		t.Errorf("info = %+v", info)
	}
	if filepath.Base(info.Path) != "bg_music_Sunny_Day_Remix.mp3" {
		t.Errorf("path = %s", info.Path)
	}
	data, err := os.ReadFile(info.Path)
	if err != nil || string(data) != "ID3-fake-mp3" {
		t.Errorf("downloaded %q, %v", data, err)
	}
}
