package audio_test

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/infra/audio"
)

func TestFileSource_LoadFromDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"01-shot.wav":  "RIFF....WAVEfmt audio data 1",
		"02-wind.txt":  "  what's the wind doing?\n",
		"03-blank.txt": "   ",
		"04-notes.md":  "ignored",
		"05-putt.wav":  "RIFF....WAVEfmt audio data 2",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}
	}

	source := audio.NewFileSource(tmpDir, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	want := []string{
		"RIFF....WAVEfmt audio data 1",
		domain.TextCommandPrefix + "what's the wind doing?",
		"RIFF....WAVEfmt audio data 2",
	}
	for i, w := range want {
		got, err := source.NextCommand(ctx)
		if err != nil {
			t.Fatalf("command %d: %v", i, err)
		}
		if string(got) != w {
			t.Errorf("command %d: got %q, want %q", i, got, w)
		}
	}

	if _, err := source.NextCommand(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("after last file: got %v, want io.EOF", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "01-shot.wav.processed")); err != nil {
		t.Errorf("processed file not renamed: %v", err)
	}
}

func TestFileSource_PollsForNewFiles(t *testing.T) {
	tmpDir := t.TempDir()
	source := audio.NewFileSource(tmpDir, false)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(filepath.Join(tmpDir, "late.txt"), []byte("180 out"), 0644)
	}()

	got, err := source.NextCommand(ctx)
	if err != nil {
		t.Fatalf("NextCommand: %v", err)
	}
	if string(got) != domain.TextCommandPrefix+"180 out" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleSource(t *testing.T) {
	in := strings.NewReader("150 yards from the fairway\n\n  wind report  \nquit\nnever read\n")
	source := audio.NewConsoleSource(in, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := source.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, want := range []string{"150 yards from the fairway", "wind report"} {
		got, err := source.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got.Text != want || !got.Final {
			t.Errorf("got %+v, want final %q", got, want)
		}
	}

	if _, err := source.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("after quit: got %v, want io.EOF", err)
	}
}

func TestParseScript(t *testing.T) {
	script := `
# front nine
partial: one fifty
final: 150 yards
end

final: what's the wind
`
	events, err := audio.ParseScript(strings.NewReader(script), 0)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}

	want := []audio.ScriptedEvent{
		{Kind: audio.EventPartial, Text: "one fifty"},
		{Kind: audio.EventFinal, Text: "150 yards"},
		{Kind: audio.EventEnd},
		{Kind: audio.EventFinal, Text: "what's the wind"},
	}
	if len(events) != len(want) {
		t.Fatalf("events: got %+v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: got %+v, want %+v", i, events[i], want[i])
		}
	}

	for _, bad := range []string{"shout: fore", "final:"} {
		if _, err := audio.ParseScript(strings.NewReader(bad), 0); err == nil {
			t.Errorf("ParseScript(%q): expected error", bad)
		}
	}
}

func TestScriptedSource(t *testing.T) {
	source := audio.NewScriptedSource([]audio.ScriptedEvent{
		{Kind: audio.EventPartial, Text: "one"},
		{Kind: audio.EventFinal, Text: "150 yards", Delay: 10 * time.Millisecond},
		{Kind: audio.EventEnd},
	})
	ctx := context.Background()

	first, _ := source.Next(ctx)
	second, _ := source.Next(ctx)
	third, _ := source.Next(ctx)

	if first.Final || first.Text != "one" {
		t.Errorf("partial: got %+v", first)
	}
	if !second.Final || second.Text != "150 yards" {
		t.Errorf("final: got %+v", second)
	}
	if !third.EndOfUtterance {
		t.Errorf("end: got %+v", third)
	}
	if _, err := source.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted: got %v, want io.EOF", err)
	}
}

func TestEncodeWAV(t *testing.T) {
	pcm := audio.SamplesToPCM([]int16{0, 1000, -1000})
	wav := audio.EncodeWAV(pcm, 16000)

	if len(wav) != 44+6 {
		t.Fatalf("length: got %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Errorf("header: got %q", wav[:44])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Errorf("sample rate: got %d", rate)
	}
	if s := int16(binary.LittleEndian.Uint16(wav[46:48])); s != 1000 {
		t.Errorf("second sample: got %d", s)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := audio.NewRateLimiter(2, time.Hour)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}
}
