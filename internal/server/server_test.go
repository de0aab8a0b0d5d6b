package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/dlovans/tagform/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func newServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(config.DefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func call(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

const framework = `[
	{"id":"1","clientId":"w1","title":"People","widgetType":"NUMBER","order":1},
	{"id":"2","clientId":"w2","title":"Notes","widgetType":"TEXT","order":2,"conditional":{
		"parentWidget":"1","parentWidgetType":"NUMBER","conditions":[
			{"key":"c1","operator":"number-greater-than","value":5,"order":1,"conjunctionOperator":"AND","invert":false}
		]}},
	{"id":"3","clientId":"w3","title":"Sector","widgetType":"MULTISELECT","order":3,
		"properties":{"options":[{"key":"health","label":"Health","order":1}]}}
]`

func TestHealth(t *testing.T) {
	w, env := call(t, newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestWidgetTypes(t *testing.T) {
	w, env := call(t, newServer(t), http.MethodGet, "/widget-types", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []widgetTypeEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 13)
	for _, e := range entries {
		assert.NotEmpty(t, e.Operators, e.Type)
	}
}

func TestEvaluate(t *testing.T) {
	s := newServer(t)
	tests := []struct {
		value any
		want  bool
	}{
		{10, true},
		{3, false},
		{nil, false},
	}
	for _, tt := range tests {
		body, _ := json.Marshal(map[string]any{"values": map[string]any{"1": tt.value}})
		req := `{"widgets":` + framework + `,` + string(body[1:])

		w, env := call(t, s, http.MethodPost, "/frameworks/evaluate", req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp evaluateResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, tt.want, resp.Visibility["2"], "value %v", tt.value)
		assert.True(t, resp.Visibility["1"])
	}
}

func TestMalformedBody(t *testing.T) {
	w, env := call(t, newServer(t), http.MethodPost, "/frameworks/evaluate", `{"widgets":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", env.Code)
}

func TestLint(t *testing.T) {
	w, env := call(t, newServer(t), http.MethodPost, "/frameworks/lint", `{"widgets":`+framework+`}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Valid)
}

func TestOpenEditor(t *testing.T) {
	s := newServer(t)

	w, env := call(t, s, http.MethodPost, "/editor/open", `{"widgetId":"3","widgets":`+framework+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	var v editorView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "select-parent", v.State)
	require.Len(t, v.Candidates, 1)
	assert.Equal(t, "1", v.Candidates[0].ID)

	w, env = call(t, s, http.MethodPost, "/editor/open", `{"widgetId":"3","parentId":"1","widgets":`+framework+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "editing", v.State)
	assert.True(t, v.CanAdd)
	assert.False(t, v.CanRemove)
	require.NotNil(t, v.Value)
	assert.Equal(t, "1", v.Value.ParentWidget)
	assert.Len(t, v.Value.Conditions, 1)

	w, env = call(t, s, http.MethodPost, "/editor/open", `{"widgetId":"1","widgets":`+framework+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "child-blocked", v.State)
	assert.Contains(t, v.Message, "1 child widgets")

	w, env = call(t, s, http.MethodPost, "/editor/open", `{"widgetId":"9","widgets":`+framework+`}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Code)
}

func TestSaveRule(t *testing.T) {
	s := newServer(t)
	rule := `{"parentWidget":"1","parentWidgetType":"NUMBER","conditions":[
		{"key":"b","operator":"number-less-than","value":9,"order":2,"conjunctionOperator":"AND"},
		{"key":"a","operator":"number-greater-than","value":5,"order":1,"conjunctionOperator":"OR"}]}`

	w, env := call(t, s, http.MethodPost, "/editor/save", `{"widgetId":"3","widgets":`+framework+`,"value":`+rule+`}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var saved struct {
		Value struct {
			Conditions []struct {
				Key   string `json:"key"`
				Order int    `json:"order"`
			} `json:"conditions"`
		} `json:"value"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	require.Len(t, saved.Value.Conditions, 2)
	assert.Equal(t, "a", saved.Value.Conditions[0].Key)
	assert.Equal(t, 1, saved.Value.Conditions[0].Order)

	empty := `{"parentWidget":"1","parentWidgetType":"NUMBER","conditions":[]}`
	w, env = call(t, s, http.MethodPost, "/editor/save", `{"widgetId":"3","widgets":`+framework+`,"value":`+empty+`}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_form", env.Code)

	w, env = call(t, s, http.MethodPost, "/editor/save", `{"widgetId":"1","widgets":`+framework+`,"value":`+rule+`}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Code)
}

func TestFilterInputs(t *testing.T) {
	s := newServer(t)
	w, env := call(t, s, http.MethodPost, "/filters/inputs",
		`{"widgets":`+framework+`,"values":[{"filterKey":"w3","valueList":["health"]}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var inputs []struct {
		Key    string `json:"key"`
		Kind   string `json:"kind"`
		Hidden bool   `json:"hidden"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inputs))
	require.Len(t, inputs, 3)
	assert.True(t, inputs[0].Hidden)
	assert.Equal(t, "multiSelect", inputs[2].Kind)
	assert.False(t, inputs[2].Hidden)

	w, env = call(t, s, http.MethodPost, "/filters/inputs", `{"widgets":`+framework+`,"allVisible":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &inputs))
	for _, in := range inputs {
		assert.False(t, in.Hidden, in.Key)
	}
}

func TestValidateFilters(t *testing.T) {
	s := newServer(t)
	w, _ := call(t, s, http.MethodPost, "/filters/validate",
		`{"widgets":`+framework+`,"values":[{"filterKey":"w1","valueGte":"2"}]}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := call(t, s, http.MethodPost, "/filters/validate",
		`{"widgets":`+framework+`,"values":[{"filterKey":"w3","value":"health"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_form", env.Code)
}

func TestDescribeFilters(t *testing.T) {
	w, env := call(t, newServer(t), http.MethodPost, "/filters/describe",
		`{"widgets":`+framework+`,"values":[{"filterKey":"w3","valueList":["health"]}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"key":"w3","field":"valueList","label":"Sector","value":"Health"}]`, string(env.Data))
}

func TestQueryVariables(t *testing.T) {
	s := newServer(t)

	w, env := call(t, s, http.MethodPost, "/filters/query", `{"widgets":`+framework+`,"query":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", env.Code)

	w, env = call(t, s, http.MethodPost, "/filters/query", `{"projectId":"p1","widgets":`+framework+`,"query":{
		"createdAtLte":"2024-05-01",
		"entriesFilterData":{"filterableData":[{"filterKey":"w3","valueList":["health"]},{"filterKey":"w1"}]}}}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.JSONEq(t, `{
		"projectId":"p1",
		"createdAtLte":"2024-05-01T23:59:59.999Z",
		"entriesFilterData":{"filterableData":[{"filterKey":"w3","valueList":["health"]}]}
	}`, string(env.Data))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	transport := &http.Transport{DisableKeepAlives: true}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestEvaluateRecords(t *testing.T) {
	s := newServer(t)
	records := `[
		{"id":"1","title":"People","widgetId":"NUMBER","order":1},
		{"id":"2","title":"Notes","widgetId":"TEXT","order":2,"conditional":{
			"parentWidget":"1","parentWidgetType":"NUMBER","conditions":[
				{"key":"c1","operator":"number-greater-than","value":5,"order":1,"conjunctionOperator":"AND"}
			]}}
	]`
	w, env := call(t, s, http.MethodPost, "/frameworks/evaluate", `{"records":`+records+`,"values":{"1":8}}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Visibility["2"])

	w, env = call(t, s, http.MethodPost, "/frameworks/evaluate", `{"records":`+records+`,"widgets":`+framework+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", env.Code)
}

func TestReorder(t *testing.T) {
	s := newServer(t)
	w, env := call(t, s, http.MethodPost, "/frameworks/reorder",
		`{"widgets":`+framework+`,"keys":["w3","w1","w2"]}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var resp struct {
		Records []struct {
			ClientID string `json:"clientId"`
			WidgetID string `json:"widgetId"`
			Order    int    `json:"order"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Records, 3)
	assert.Equal(t, "w3", resp.Records[0].ClientID)
	assert.Equal(t, "MULTISELECT", resp.Records[0].WidgetID)
	assert.Equal(t, 1, resp.Records[0].Order)
	assert.Equal(t, 3, resp.Records[2].Order)

	w, env = call(t, s, http.MethodPost, "/frameworks/reorder", `{"widgets":`+framework+`,"keys":["w3","w1"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", env.Code)
}

func TestSaveRuleRecord(t *testing.T) {
	rule := `{"parentWidget":"1","parentWidgetType":"NUMBER","conditions":[
		{"key":"a","operator":"number-greater-than","value":5,"order":1,"conjunctionOperator":"AND"}]}`
	w, env := call(t, newServer(t), http.MethodPost, "/editor/save", `{"widgetId":"3","widgets":`+framework+`,"value":`+rule+`}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var saved struct {
		Record struct {
			ID          string `json:"id"`
			WidgetID    string `json:"widgetId"`
			Conditional struct {
				ParentWidget string `json:"parentWidget"`
			} `json:"conditional"`
			Properties json.RawMessage `json:"properties"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.Equal(t, "3", saved.Record.ID)
	assert.Equal(t, "MULTISELECT", saved.Record.WidgetID)
	assert.Equal(t, "1", saved.Record.Conditional.ParentWidget)
	assert.Contains(t, string(saved.Record.Properties), `"health"`)
}

func TestFilterInputsFromRecords(t *testing.T) {
	s := newServer(t)
	records := `[
		{"id":"1","clientId":"o1","title":"Units","widgetId":"ORGANIGRAM","order":1,
			"properties":{"options":{"key":"root","label":"Root","order":1,
				"children":[{"key":"east","label":"East","order":1}]}}},
		{"id":"2","clientId":"o2","title":"Broken","widgetId":"ORGANIGRAM","order":2,
			"properties":{"options":"not a tree"}}
	]`
	w, env := call(t, s, http.MethodPost, "/filters/inputs", `{"records":`+records+`,"allVisible":true}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var inputs []struct {
		Key     string `json:"key"`
		Options []struct {
			Key string `json:"key"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inputs))
	require.Len(t, inputs, 2)
	assert.Equal(t, "o1", inputs[0].Key)
	require.Len(t, inputs[0].Options, 2)
	assert.Equal(t, "east", inputs[0].Options[1].Key)
	assert.Equal(t, "o2", inputs[1].Key)
	assert.Empty(t, inputs[1].Options)

	w, env = call(t, s, http.MethodPost, "/filters/query", `{"projectId":"p1","records":`+records+`,"query":{
		"entriesFilterData":{"filterableData":[{"filterKey":"o1","valueList":["east"]}]}}}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Contains(t, string(env.Data), `"east"`)
}
