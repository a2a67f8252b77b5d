package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cardnews/common"
)

const jamendoTracksURL = "https://api.jamendo.com/v3.0/tracks/"

// Track is one catalog entry.
type Track struct {
	Title       string
	Artist      string
	ListenURL   string
	DownloadURL string
	Duration    int
	License     string
}

// JamendoClient searches and downloads background music.
type JamendoClient struct {
	ClientID string
	BaseURL  string
	Client   *http.Client
}

func NewJamendoClient(clientID string) *JamendoClient {
	return &JamendoClient{
		ClientID: clientID,
		BaseURL:  jamendoTracksURL,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type jamendoResponse struct {
	Results []struct {
		Name          string `json:"name"`
		ArtistName    string `json:"artist_name"`
		Audio         string `json:"audio"`
		AudioDownload string `json:"audiodownload"`
		Duration      int    `json:"duration"`
		LicenseCCURL  string `json:"license_ccurl"`
	} `json:"results"`
}

// searchTag queries featured tracks for a single tag; an empty tag lists the
// most popular featured tracks.
func (j *JamendoClient) searchTag(ctx context.Context, tag string, limit int) ([]Track, error) {
	params := url.Values{}
	params.Set("client_id", j.ClientID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("audioformat", "mp32")
	params.Set("order", "popularity_total")
	params.Set("include", "musicinfo")
	params.Set("featured", "1")
	if tag != "" {
		params.Set("tags", tag)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := j.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jamendo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jamendo API error: %d - %s", resp.StatusCode, string(body))
	}

	var data jamendoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode jamendo response: %w", err)
	}
	tracks := make([]Track, 0, len(data.Results))
	for _, r := range data.Results {
		tracks = append(tracks, Track{
			Title:       r.Name,
			Artist:      r.ArtistName,
			ListenURL:   r.Audio,
			DownloadURL: r.AudioDownload,
			Duration:    r.Duration,
			License:     r.LicenseCCURL,
		})
	}
	return tracks, nil
}

// Search tries, in order, the given tags, the first five featured genres, a
// few upbeat moods and finally the untagged popular list. The first strategy
// that returns anything ends the search.
func (j *JamendoClient) Search(ctx context.Context, tags []string, limit int) ([]Track, error) {
	if err := common.RequireKey(common.EnvJamendoClientID, j.ClientID); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		tags = DefaultTags
	}
	strategies := []struct {
		name string
		tags []string
	}{
		{"topic tags", tags},
		{"featured genres", FeaturedGenres[:5]},
		{"popular moods", FallbackMoods},
		{"most popular", []string{""}},
	}

	var lastErr error
	for _, s := range strategies {
		var found []Track
		for _, tag := range s.tags {
			tracks, err := j.searchTag(ctx, tag, limit)
			if err != nil {
				log.Printf("[Music] Warning: %s search for %q failed: %v", s.name, tag, err)
				lastErr = err
				continue
			}
			if len(tracks) > 0 {
				log.Printf("[Music] Found %d tracks with %s %q", len(tracks), s.name, tag)
				found = append(found, tracks...)
				if len(found) >= limit {
					break
				}
			}
		}
		if len(found) > 0 {
			if len(found) > limit {
				found = found[:limit]
			}
			return found, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("no tracks found: %w", lastErr)
	}
	return nil, fmt.Errorf("no tracks found")
}

// Download saves the track at dest.
func (j *JamendoClient) Download(ctx context.Context, t Track, dest string) (err error) {
	if t.DownloadURL == "" {
		return fmt.Errorf("track %q has no download link", t.Title)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.DownloadURL, nil)
	if err != nil {
		return err
	}
	resp, err := j.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()
	_, err = io.Copy(f, resp.Body)
	return err
}

// FileName is the local name for a downloaded track.
func FileName(t Track) string {
	return "bg_music_" + common.SanitizeName(t.Title, 30) + ".mp3"
}

// SelectAndDownload searches with tags, downloads the first downloadable
// track into dir and returns its record.
func (j *JamendoClient) SelectAndDownload(ctx context.Context, tags []string, dir string) (*common.MusicInfo, error) {
	log.Printf("[Music] Searching background music with tags %v", tags)
	tracks, err := j.Search(ctx, tags, 5)
	if err != nil {
		return nil, err
	}
	for _, t := range tracks {
		if t.DownloadURL == "" {
			continue
		}
		dest := filepath.Join(dir, FileName(t))
		if err := j.Download(ctx, t, dest); err != nil {
			log.Printf("[Music] Warning: %v", err)
			continue
		}
		log.Printf("[Music] Background music downloaded: %s by %s", t.Title, t.Artist)
		return &common.MusicInfo{Title: t.Title, Artist: t.Artist, Path: dest}, nil
	}
	return nil, fmt.Errorf("no downloadable track among %d results", len(tracks))
}
