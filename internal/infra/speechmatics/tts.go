package speechmatics

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golf-caddie/internal/infra"
)

const (
	DefaultTTSURL = "https://preview.tts.speechmatics.com/generate"
	ttsSampleRate = 16000
)

// TTSClient synthesizes speech with the Speechmatics preview TTS endpoint,
// which returns raw float32 little-endian mono PCM at 16 kHz.
type TTSClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewTTSClient(apiKey string) *TTSClient {
	return NewTTSClientWithURL(apiKey, DefaultTTSURL)
}

func NewTTSClientWithURL(apiKey, url string) *TTSClient {
	return &TTSClient{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TTSClient) SampleRate() int {
	return ttsSampleRate
}

// Synthesize returns 16-bit little-endian PCM.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	bodyBytes, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var raw []byte
	retryErr := infra.WithRetry(ctx, infra.QuickRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return infra.StatusError("speechmatics tts", resp.StatusCode, respBody)
		}

		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("empty audio from speechmatics tts")
	}
	return float32ToPCM16(raw), nil
}

func float32ToPCM16(raw []byte) []byte {
	n := len(raw) / 4
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*32767)))
	}
	return out
}
