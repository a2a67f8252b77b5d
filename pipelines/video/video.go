package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"cardnews/common"
)

// Runner executes an external tool and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CheckTools reports whether ffmpeg and ffprobe are on PATH.
func CheckTools() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found: %w", tool, err)
		}
	}
	return nil
}

type VideoGenerator struct {
	OutputDir string
	Width     int
	Height    int
	FPS       int

	// SilentSeconds is how long a card without narration stays on screen.
	SilentSeconds float64
	MusicVolume   float64
	FadeSeconds   float64
	Run           Runner
}

func NewVideoGenerator(outputDir string) *VideoGenerator {
	return &VideoGenerator{
		OutputDir:     outputDir,
		Width:         1080,
		Height:        1920,
		FPS:           30,
		SilentSeconds: 2,
		MusicVolume:   0.15,
		FadeSeconds:   2,
		Run:           execRunner,
	}
}

// OutputName is the final video file name for topic.
func OutputName(topic string) string {
	return "card_news_video_" + strings.ToLower(common.SanitizeName(topic, 60)) + ".mp4"
}

// CollectCardMedia lists card_1.png, card_2.png, ... from cardsDir until the
// first gap, with the matching narration from audioDir. A card without
// narration gets an empty audio path.
func CollectCardMedia(cardsDir, audioDir string) (images, audio []string) {
	for i := 1; ; i++ {
		img := common.NumberedPath(cardsDir, "card", i, "png")
		if _, err := os.Stat(img); err != nil {
			break
		}
		images = append(images, img)
		track := ""
		for _, ext := range []string{"mp3", "wav"} {
			p := common.NumberedPath(audioDir, "card", i, ext)
			if _, err := os.Stat(p); err == nil {
				track = p
				break
			}
		}
		audio = append(audio, track)
	}
	return images, audio
}

// Assemble turns the card images into one video. Each card lasts as long as
// its narration, or SilentSeconds without one. musicPath may be empty.
func (v *VideoGenerator) Assemble(ctx context.Context, images, audio []string, musicPath, topic string) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("no card images found")
	}
	workDir := filepath.Join(v.OutputDir, "segments")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create segment dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	var segments []string
	for i, img := range images {
		track := ""
		if i < len(audio) {
			track = audio[i]
		}
		log.Printf("[Video] Creating segment for card %d...", i+1)
		seg, err := v.CreateSegment(ctx, img, track, filepath.Join(workDir, fmt.Sprintf("seg_%02d.mp4", i+1)))
		if err != nil {
			return "", fmt.Errorf("card %d: %w", i+1, err)
		}
		segments = append(segments, seg)
	}

	finalPath := filepath.Join(v.OutputDir, OutputName(topic))
	if musicPath == "" {
		log.Println("[Video] WARNING: no background music, video will be generated without it")
		if err := v.ConcatSegments(ctx, segments, finalPath); err != nil {
			return "", err
		}
		log.Printf("[Video] Video saved as %s", finalPath)
		return finalPath, nil
	}

	narrated := filepath.Join(workDir, "narrated.mp4")
	if err := v.ConcatSegments(ctx, segments, narrated); err != nil {
		return "", err
	}
	log.Printf("[Video] Adding background music: %s", musicPath)
	if err := v.AddBackgroundMusic(ctx, narrated, musicPath, finalPath); err != nil {
		log.Printf("[Video] Warning: music mix failed, keeping narration only: %v", err)
		if err := os.Rename(narrated, finalPath); err != nil {
			return "", fmt.Errorf("failed to move video: %w", err)
		}
	}
	log.Printf("[Video] Video saved as %s", finalPath)
	return finalPath, nil
}

// CreateSegment loops one image for the length of its narration.
func (v *VideoGenerator) CreateSegment(ctx context.Context, imagePath, audioPath, outputPath string) (string, error) {
	duration := v.SilentSeconds
	if audioPath != "" {
		d, err := v.getAudioDuration(ctx, audioPath)
		if err != nil {
			log.Printf("[Video] Warning: cannot read duration of %s, using %.0fs of silence: %v", audioPath, v.SilentSeconds, err)
			audioPath = ""
		} else {
			duration = d
		}
	}

	args := v.segmentArgs(imagePath, audioPath, duration, outputPath)
	if output, err := v.Run(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg video creation failed: %s, output: %s", err, string(output))
	}
	return outputPath, nil
}

func (v *VideoGenerator) segmentArgs(imagePath, audioPath string, duration float64, outputPath string) []string {
	fps := strconv.Itoa(v.FPS)
	length := fmt.Sprintf("%.3f", duration)
	args := []string{"-y", "-loop", "1", "-framerate", fps, "-i", imagePath}
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	} else {
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=44100")
	}
	return append(args,
		"-t", length,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-pix_fmt", "yuv420p",
		"-vf", fmt.Sprintf("scale=%d:%d", v.Width, v.Height),
		"-r", fps,
		"-c:a", "aac",
		"-ar", "44100",
		"-ac", "2",
		outputPath,
	)
}

func (v *VideoGenerator) ConcatSegments(ctx context.Context, segments []string, outputPath string) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to concat")
	}

	listPath := outputPath + "_list.txt"
	if err := os.WriteFile(listPath, []byte(concatList(segments)), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	output, err := v.Run(ctx, "ffmpeg", "-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %s, output: %s", err, string(output))
	}
	return nil
}

func concatList(segments []string) string {
	var sb strings.Builder
	for _, seg := range segments {
		absPath, err := filepath.Abs(seg)
		if err != nil {
			absPath = seg
		}
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(absPath, "'", `'\''`))
	}
	return sb.String()
}

// AddBackgroundMusic mixes musicPath under the narration of videoPath at
// MusicVolume, cut to the video length, and fades the last FadeSeconds out.
func (v *VideoGenerator) AddBackgroundMusic(ctx context.Context, videoPath, musicPath, outputPath string) error {
	total, err := v.getAudioDuration(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("probe video: %w", err)
	}
	args := []string{
		"-y",
		"-i", videoPath,
		"-stream_loop", "-1", "-i", musicPath,
		"-filter_complex", v.musicFilter(total),
		"-map", "0:v", "-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-t", fmt.Sprintf("%.3f", total),
		outputPath,
	}
	if output, err := v.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg music mix failed: %s, output: %s", err, string(output))
	}
	return nil
}

func (v *VideoGenerator) musicFilter(total float64) string {
	bg := fmt.Sprintf("[1:a]volume=%.2f,atrim=0:%.3f", v.MusicVolume, total)
	mix := "[0:a][bg]amix=inputs=2:duration=first:dropout_transition=0:normalize=0"
	if total > v.FadeSeconds {
		fade := fmt.Sprintf(",afade=t=out:st=%.3f:d=%.3f", total-v.FadeSeconds, v.FadeSeconds)
		bg += fade
		mix += fade
	}
	return bg + "[bg];" + mix + "[a]"
}

func (v *VideoGenerator) getAudioDuration(ctx context.Context, path string) (float64, error) {
	output, err := v.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	durationStr := strings.TrimSpace(string(output))
	return strconv.ParseFloat(durationStr, 64)
}
