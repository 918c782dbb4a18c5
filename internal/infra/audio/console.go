package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golf-caddie/internal/domain"
)

var quitWords = map[string]bool{"q": true, "quit": true, "exit": true}

// ConsoleSource reads one typed utterance per line. A quit word or the end of
// input ends the session.
type ConsoleSource struct {
	in     io.Reader
	prompt io.Writer

	lines chan string
	once  sync.Once
}

func NewConsoleSource(in io.Reader, prompt io.Writer) *ConsoleSource {
	if prompt == nil {
		prompt = io.Discard
	}
	return &ConsoleSource{in: in, prompt: prompt}
}

func (c *ConsoleSource) Name() string {
	return "console"
}

func (c *ConsoleSource) Start(_ context.Context) error {
	c.once.Do(func() {
		c.lines = make(chan string)
		fmt.Fprintln(c.prompt, "Type your shot (q to quit):")
		go c.scan()
	})
	return nil
}

func (c *ConsoleSource) Stop() error {
	return nil
}

// scan runs until input ends. Reads from a terminal cannot be interrupted, so
// the goroutine outlives Stop until the next line or EOF.
func (c *ConsoleSource) scan() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if quitWords[strings.ToLower(line)] {
			return
		}
		c.lines <- line
	}
}

func (c *ConsoleSource) Next(ctx context.Context) (domain.Transcript, error) {
	if c.lines == nil {
		return domain.Transcript{}, fmt.Errorf("console source not started")
	}
	for {
		fmt.Fprint(c.prompt, "> ")
		select {
		case <-ctx.Done():
			return domain.Transcript{}, ctx.Err()
		case line, ok := <-c.lines:
			if !ok {
				return domain.Transcript{}, io.EOF
			}
			if line == "" {
				continue
			}
			return domain.Transcript{Text: line, Final: true, ReceivedAt: time.Now()}, nil
		}
	}
}
