// Package testsuite runs godog feature files against an http.Handler.
package testsuite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
)

// AuthTokenKey is the storage key sent as the Bearer token by authenticated steps.
const AuthTokenKey = "authToken"

type DBSeeder interface {
	Seed(document string, data *godog.Table) error
}

// Resetter clears state between scenarios.
type Resetter func() error

type TestSuite struct {
	T           *testing.T
	Router      http.Handler
	Resp        *http.Response
	RespBody    []byte
	Storage     map[string]string
	RequestBody []byte
	BaseURL     string
	DbSeeders   map[string]DBSeeder
	Reset       Resetter
}

func New(t *testing.T, router http.Handler) *TestSuite {
	return &TestSuite{
		T:         t,
		Router:    router,
		Storage:   make(map[string]string),
		DbSeeders: make(map[string]DBSeeder),
	}
}

type TestLogger struct {
	T *testing.T
}

func (tl *TestLogger) Write(p []byte) (n int, err error) {
	if tl.T != nil {
		tl.T.Logf("%s", p)
	}
	return len(p), nil
}

func (ts *TestSuite) RegisterDBSeeder(document string, seeder DBSeeder) {
	ts.DbSeeders[document] = seeder
}

func (ts *TestSuite) SetBaseURL(baseURL string) {
	ts.BaseURL = baseURL
}

func (ts *TestSuite) InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		if ts.Storage == nil {
			ts.Storage = make(map[string]string)
		}
	})
}

func (ts *TestSuite) InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.BeforeScenario(func(sc *godog.Scenario) {
		ts.Resp = nil
		ts.RespBody = nil
		ts.RequestBody = nil
		ts.Storage = make(map[string]string)
		if ts.Reset != nil {
			if err := ts.Reset(); err != nil {
				ts.T.Errorf("reset before %q: %v", sc.Name, err)
			}
		}
	})

	ctx.Step(`^document "([^"]*)" has the following items$`, ts.documentHasTheFollowingItems)
	ctx.Step(`^I send a (GET|POST|PATCH|PUT|DELETE) request to "([^"]*)"$`, ts.iSendARequestTo)
	ctx.Step(`^I send a (POST|PATCH|PUT) request to "([^"]*)" with body$`, ts.iSendARequestToWithBody)
	ctx.Step(`^I send an authenticated (GET|POST|PATCH|PUT|DELETE) request to "([^"]*)"$`, ts.iSendAnAuthenticatedRequestTo)
	ctx.Step(`^I send an authenticated (POST|PATCH|PUT) request to "([^"]*)" with body$`, ts.iSendAnAuthenticatedRequestToWithBody)
	ctx.Step(`^the response status should be (\d+)$`, ts.theResponseStatusShouldBe)
	ctx.Step(`^the response "([^"]*)" field is stored as "([^"]*)"$`, ts.theResponseFieldIsStoredAs)
	ctx.Step(`^the response should contain an item with$`, ts.theResponseShouldContainAnItemWith)
	ctx.Step(`^the response "([^"]*)" field should be "([^"]*)"$`, ts.theResponseFieldShouldBe)
	ctx.Step(`^the response should be a list of (\d+) items?$`, ts.theResponseShouldBeAListOf)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, ts.theResponseHeaderShouldBe)
}

// Run executes the feature files under paths and fails t when a scenario fails.
func (ts *TestSuite) Run(name string, paths ...string) {
	opts := godog.Options{
		Format:    "pretty",
		Output:    colors.Colored(&TestLogger{T: ts.T}),
		Paths:     paths,
		Strict:    true,
		Randomize: 0,
	}

	status := godog.TestSuite{
		Name:                 name,
		TestSuiteInitializer: ts.InitializeTestSuite,
		ScenarioInitializer:  ts.InitializeScenario,
		Options:              &opts,
	}.Run()
	if status != 0 {
		ts.T.Fatalf("feature suite %s failed with status %d", name, status)
	}
}

func (ts *TestSuite) documentHasTheFollowingItems(document string, data *godog.Table) error {
	seeder, ok := ts.DbSeeders[document]
	if !ok {
		return fmt.Errorf("no seeder registered for document %s", document)
	}
	return seeder.Seed(document, data)
}

func (ts *TestSuite) iSendARequestTo(method, path string) error {
	return ts.send(method, path, nil, false)
}

func (ts *TestSuite) iSendARequestToWithBody(method, path string, body *godog.Table) error {
	requestBody, err := ts.parseDataTableToJSON(body)
	if err != nil {
		return err
	}
	return ts.send(method, path, requestBody, false)
}

func (ts *TestSuite) iSendAnAuthenticatedRequestTo(method, path string) error {
	return ts.send(method, path, nil, true)
}

func (ts *TestSuite) iSendAnAuthenticatedRequestToWithBody(method, path string, body *godog.Table) error {
	requestBody, err := ts.parseDataTableToJSON(body)
	if err != nil {
		return err
	}
	return ts.send(method, path, requestBody, true)
}

func (ts *TestSuite) send(method, path string, body []byte, authenticated bool) error {
	ts.RequestBody = body
	req, err := http.NewRequest(method, ts.BaseURL+ts.expand(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token, ok := ts.Storage[AuthTokenKey]
		if !ok {
			return fmt.Errorf("no %s stored, log in first", AuthTokenKey)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if ts.BaseURL != "" {
		ts.Resp, err = http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
	} else {
		w := httptest.NewRecorder()
		ts.Router.ServeHTTP(w, req)
		ts.Resp = w.Result()
	}
	defer ts.Resp.Body.Close()

	ts.RespBody, err = io.ReadAll(ts.Resp.Body)
	return err
}

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// expand replaces {key} with the stored value of key.
func (ts *TestSuite) expand(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := ts.Storage[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

func (ts *TestSuite) theResponseStatusShouldBe(status int) error {
	if ts.Resp == nil {
		return fmt.Errorf("no request has been sent")
	}
	if ts.Resp.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, ts.Resp.StatusCode, ts.RespBody)
	}
	return nil
}

func (ts *TestSuite) theResponseFieldIsStoredAs(field, key string) error {
	val, err := ts.lookup(field)
	if err != nil {
		return err
	}
	ts.Storage[key] = fmt.Sprintf("%v", val)
	return nil
}

func (ts *TestSuite) theResponseFieldShouldBe(field, expected string) error {
	val, err := ts.lookup(field)
	if err != nil {
		return err
	}
	if actual := fmt.Sprintf("%v", val); actual != ts.expand(expected) {
		return fmt.Errorf("field %s: expected %q, got %q", field, ts.expand(expected), actual)
	}
	return nil
}

// lookup resolves a dotted path such as post.author.email or
// comments.0.user in the JSON response.
func (ts *TestSuite) lookup(field string) (interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(ts.RespBody, &data); err != nil {
		return nil, err
	}
	for _, part := range strings.Split(field, ".") {
		switch node := data.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %s not found in response", field)
			}
			data = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("field %s not found in response", field)
			}
			data = node[idx]
		default:
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return data, nil
}

func (ts *TestSuite) theResponseShouldContainAnItemWith(body *godog.Table) error {
	expected, err := ts.parseDataTableToMap(body)
	if err != nil {
		return err
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(ts.RespBody, &items); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal(ts.RespBody, &single); err != nil {
			return err
		}
		items = []map[string]interface{}{single}
	}

	for _, item := range items {
		if matches(item, expected) {
			return nil
		}
	}
	return fmt.Errorf("no item in response matches %v: %s", expected, ts.RespBody)
}

func matches(item map[string]interface{}, expected map[string]string) bool {
	for key, want := range expected {
		got, ok := item[key]
		if !ok || fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

func (ts *TestSuite) theResponseShouldBeAListOf(count int) error {
	var items []interface{}
	if err := json.Unmarshal(ts.RespBody, &items); err != nil {
		return fmt.Errorf("response is not a list: %s", ts.RespBody)
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items, got %d: %s", count, len(items), ts.RespBody)
	}
	return nil
}

func (ts *TestSuite) theResponseHeaderShouldBe(header, expected string) error {
	if actual := ts.Resp.Header.Get(header); actual != expected {
		return fmt.Errorf("header %s: expected %q, got %q", header, expected, actual)
	}
	return nil
}

func (ts *TestSuite) parseDataTableToMap(body *godog.Table) (map[string]string, error) {
	if len(body.Rows) < 2 {
		return nil, fmt.Errorf("table must have at least two rows")
	}
	headers := body.Rows[0].Cells
	data := make(map[string]string)
	for j, cell := range body.Rows[1].Cells {
		data[headers[j].Value] = ts.expand(cell.Value)
	}
	return data, nil
}

func (ts *TestSuite) parseDataTableToJSON(body *godog.Table) ([]byte, error) {
	data, err := ts.parseDataTableToMap(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}
