package entropy

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededIsDeterministic(t *testing.T) {
	a, b := NewSeeded(7), NewSeeded(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
}

func TestHelpersStayInRange(t *testing.T) {
	src := NewSeeded(1)
	for i := 0; i < 500; i++ {
		u := Uniform(src, -10, 10)
		assert.GreaterOrEqual(t, u, -10.0)
		assert.Less(t, u, 10.0)

		n := IntRange(src, 170, 179)
		assert.GreaterOrEqual(t, n, 170)
		assert.LessOrEqual(t, n, 179)
	}
	assert.Equal(t, 5, IntRange(src, 5, 5))
}

func TestCryptoSource(t *testing.T) {
	src := Crypto()
	for i := 0; i < 200; i++ {
		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
		n := src.Intn(3)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3)
	}
}

func TestNilClientFallsBack(t *testing.T) {
	var c *Client
	assert.Nil(t, NewClient(""))
	assert.False(t, c.Enabled())
	f := c.Float64()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
	assert.IsType(t, cryptoSource{}, FromClient(c))
}

func TestClientDrainsPool(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		data := ""
		for i := 0; i < 20; i++ {
			if i > 0 {
				data += ","
			}
			data += fmt.Sprintf("0.%02d", i+1)
		}
		fmt.Fprintf(w, `{"result":{"random":{"data":[%s]}}}`, data)
	}))
	defer srv.Close()

	old := endpoint
	endpoint = srv.URL
	defer func() { endpoint = old }()

	c := NewClient("key")
	require.True(t, c.Enabled())
	assert.Equal(t, 0.01, c.Float64())
	assert.Equal(t, 0.02, c.Float64())
	assert.Equal(t, 1, calls)
}

func TestClientAPIErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"quota"}}`)
	}))
	defer srv.Close()

	old := endpoint
	endpoint = srv.URL
	defer func() { endpoint = old }()

	c := NewClient("key")
	f := c.Float64()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}
