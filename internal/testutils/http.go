package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestServer is an httptest server plus a browser-like client: it keeps
// cookies between requests and does not follow redirects, so tests can
// assert on 302 responses.
type TestServer struct {
	*httptest.Server
	Client *http.Client
	t      *testing.T
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &TestServer{
		Server: server,
		Client: NewClient(t),
		t:      t,
	}
}

// NewClient returns a client with its own cookie jar.
func NewClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// WithClient returns a view of the server that sends requests through
// client, e.g. a second logged-in user.
func (ts *TestServer) WithClient(client *http.Client) *TestServer {
	return &TestServer{Server: ts.Server, Client: client, t: ts.t}
}

func (ts *TestServer) do(method, path string, body io.Reader, contentType string) *http.Response {
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(ts.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *TestServer) GET(path string) *http.Response {
	return ts.do(http.MethodGet, path, nil, "")
}

// PostForm submits an HTML form.
func (ts *TestServer) PostForm(path string, values url.Values) *http.Response {
	return ts.do(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func (ts *TestServer) POST(path string, body interface{}) *http.Response {
	return ts.do(http.MethodPost, path, ts.jsonBody(body), "application/json")
}

func (ts *TestServer) PATCH(path string, body interface{}) *http.Response {
	return ts.do(http.MethodPatch, path, ts.jsonBody(body), "application/json")
}

// POSTRaw sends body as-is.
func (ts *TestServer) POSTRaw(path, body string) *http.Response {
	return ts.do(http.MethodPost, path, strings.NewReader(body), "application/json")
}

// PATCHRaw sends body as-is.
func (ts *TestServer) PATCHRaw(path, body string) *http.Response {
	return ts.do(http.MethodPatch, path, strings.NewReader(body), "application/json")
}

func (ts *TestServer) DELETE(path string) *http.Response {
	return ts.do(http.MethodDelete, path, nil, "")
}

func (ts *TestServer) jsonBody(body interface{}) io.Reader {
	if body == nil {
		return nil
	}
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err)
	return bytes.NewReader(jsonBody)
}

// ReadBody returns the full response body as a string.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func AssertJSONResponse(t *testing.T, resp *http.Response, expectedStatus int, target interface{}) {
	t.Helper()
	require.Equal(t, expectedStatus, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	if target != nil {
		err := json.NewDecoder(resp.Body).Decode(target)
		require.NoError(t, err)
	}
}

func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()
	require.Equal(t, expectedStatus, resp.StatusCode)

	var errorResp map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	require.NoError(t, err)

	if expectedMessage != "" {
		require.Contains(t, errorResp["error"], expectedMessage)
	}
}

// AssertRedirect checks for a 302 to location.
func AssertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}
