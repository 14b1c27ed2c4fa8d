package proxy

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	e, err := NewEnvelope(map[string]interface{}{"ok": true})
	require.NoError(t, err)

	assert.Equal(t, "/", e.Resource)
	assert.Equal(t, "/", e.Path)
	assert.Equal(t, "POST", e.HTTPMethod)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, e.Headers)
	assert.Equal(t, `{"ok":true}`, e.Body)
	assert.False(t, e.IsBase64Encoded)
}

func TestNewEnvelope_bodies(t *testing.T) {
	cases := []struct {
		body     interface{}
		expected string
	}{
		{nil, `null`},
		{"text", `"text"`},
		{42, `42`},
		{[]int{1, 2}, `[1,2]`},
		{map[string]string{}, `{}`},
		{struct {
			Name string `json:"name"`
		}{"acme"}, `{"name":"acme"}`},
		{map[string]string{"q": "a<b && c>d"}, `{"q":"a<b && c>d"}`},
	}

	for _, c := range cases {
		e, err := NewEnvelope(c.body)
		assert.NoError(t, err)
		assert.Equal(t, c.expected, e.Body)
	}
}

func TestNewEnvelope_lineSeparators(t *testing.T) {
	cases := []struct {
		body     string
		expected string
	}{
		{"a\u2028b", "\"a\u2028b\""},
		{"a\u2029b", "\"a\u2029b\""},
		{`a\u2028b`, `"a\\u2028b"`},
		{"\\\u2028", "\"\\\\\u2028\""},
		{"tab\there", `"tab\there"`},
	}

	for _, c := range cases {
		e, err := NewEnvelope(map[string]string{"s": c.body})
		require.NoError(t, err)
		assert.Equal(t, `{"s":`+c.expected+`}`, e.Body)

		var decoded map[string]string
		require.NoError(t, json.Unmarshal([]byte(e.Body), &decoded))
		assert.Equal(t, c.body, decoded["s"])
	}
}

func TestEnvelope_Marshal_lineSeparators(t *testing.T) {
	e, err := NewEnvelope(map[string]string{"s": "a\u2028b"})
	require.NoError(t, err)

	b, err := e.Marshal()
	require.NoError(t, err)

	assert.Contains(t, string(b), `"body":"{\"s\":\"a`+"\u2028"+`b\"}"`)
	assert.NotContains(t, string(b), `\u2028`)
}

func TestNewEnvelope_error(t *testing.T) {
	_, err := NewEnvelope(make(chan int))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal body chan int")
}

func TestEnvelope_Marshal(t *testing.T) {
	expected, err := os.ReadFile("testdata/envelope.json")
	require.NoError(t, err)

	body := map[string]interface{}{
		"payload": map[string]interface{}{
			"type": "balance_summary",
			"parameters": map[string]interface{}{
				"subsidiary_id": "1",
				"period_id":     "<p&q>",
			},
		},
	}

	e, err := NewEnvelope(body)
	require.NoError(t, err)

	actual, err := e.Marshal()
	require.NoError(t, err)

	assert.Equal(t, string(expected), string(actual))
}

func TestEnvelope_ProxyRequest(t *testing.T) {
	e, err := NewEnvelope(map[string]int{"n": 1})
	require.NoError(t, err)

	request := e.ProxyRequest()

	assert.Equal(t, "/", request.Resource)
	assert.Equal(t, "/", request.Path)
	assert.Equal(t, "POST", request.HTTPMethod)
	assert.Equal(t, "application/json", request.Headers["Content-Type"])
	assert.Equal(t, `{"n":1}`, request.Body)
	assert.False(t, request.IsBase64Encoded)

	request.Headers["Content-Type"] = "text/plain"
	assert.Equal(t, "application/json", e.Headers["Content-Type"])
}

func TestEnvelope_ProxyRequest_wire(t *testing.T) {
	e, err := NewEnvelope([]string{"a"})
	require.NoError(t, err)

	b, err := e.Marshal()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Equal(t, map[string]interface{}{}, decoded["requestContext"])
	assert.Equal(t, false, decoded["isBase64Encoded"])
	assert.Len(t, decoded, 7)
}
