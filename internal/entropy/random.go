// Package entropy provides the random sources behind roster sampling and
// hierarchy jitter. Every consumer takes a Source so tests can pin it.
// The pooled random.org client falls back to crypto/rand when the API is
// unavailable.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	mrand "math/rand"
	"net/http"
	"sync"
	"time"
)

// Source is the randomness the engine consumes. *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
	NormFloat64() float64
}

// NewSeeded returns a deterministic source.
func NewSeeded(seed int64) Source {
	return mrand.New(mrand.NewSource(seed))
}

// Crypto returns a source backed by crypto/rand.
func Crypto() Source {
	return cryptoSource{}
}

// Uniform returns a float in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Gauss returns a normal sample with the given mean and standard deviation.
func Gauss(src Source, mean, sd float64) float64 {
	return mean + src.NormFloat64()*sd
}

// IntRange returns an int in [lo, hi].
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64     { return cryptoRandFloat() }
func (cryptoSource) Intn(n int) int       { return intn(cryptoRandFloat, n) }
func (cryptoSource) NormFloat64() float64 { return boxMuller(cryptoRandFloat) }

// Client provides true random numbers from random.org with a local pool.
type Client struct {
	apiKey string
	client *http.Client

	mu   sync.Mutex
	pool []float64
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Float64 returns a random float64 in [0, 1). Uses the pool, refilling from
// random.org when low. Falls back to crypto/rand on API failure.
func (c *Client) Float64() float64 {
	if c == nil {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 10 {
		c.refill()
	}

	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}

	val := c.pool[0]
	c.pool = c.pool[1:]
	return val
}

// Intn returns an int in [0, n).
func (c *Client) Intn(n int) int { return intn(c.Float64, n) }

// NormFloat64 returns a standard normal sample.
func (c *Client) NormFloat64() float64 { return boxMuller(c.Float64) }

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// FromClient returns c when enabled, otherwise the crypto source.
func FromClient(c *Client) Source {
	if c.Enabled() {
		return c
	}
	return Crypto()
}

func (c *Client) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             100,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return
	}

	resp, err := c.client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return
	}

	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return
	}

	for _, v := range result.Result.Random.Data {
		if v >= 0 && v < 1 {
			c.pool = append(c.pool, v)
		}
	}
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
}

// endpoint is a variable so tests can point the client at httptest.
var endpoint = "https://api.random.org/json-rpc/4/invoke"

// cryptoRandFloat generates a random float64 using crypto/rand as fallback.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return 0.5
	}
	// 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

func intn(f func() float64, n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	v := int(f() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

func boxMuller(f func() float64) float64 {
	u1 := f()
	for u1 <= 0 {
		u1 = f()
	}
	u2 := f()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
