package condition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dlovans/tagform/pkg/widget"
)

func geoScenario() []widget.Widget {
	return []widget.Widget{
		{ID: "1", ClientID: "w1", Type: widget.TypeGeo, Order: 1},
		{ID: "2", ClientID: "w2", Type: widget.TypeText, Order: 2, Conditional: &widget.Conditional{
			ParentWidget:     "1",
			ParentWidgetType: widget.TypeGeo,
			Conditions: []widget.Condition{
				{Key: "c1", Order: 1, Operator: OpEmpty, Invert: false, ConjunctionOperator: widget.ConjunctionAnd},
			},
		}},
	}
}

func TestGeoEmptyScenario(t *testing.T) {
	widgets := geoScenario()
	engine := NewEngine(widgets)

	assert.True(t, engine.Visible("2", map[string]any{"1": []any{}}))
	assert.False(t, engine.Visible("2", map[string]any{"1": []any{"area-42"}}))
	assert.True(t, engine.Visible("2", map[string]any{}), "missing value is empty")

	widgets[1].Conditional.Conditions[0].Invert = true
	inverted := NewEngine(widgets)
	assert.False(t, inverted.Visible("2", map[string]any{"1": []any{}}))
	assert.True(t, inverted.Visible("2", map[string]any{"1": []any{"area-42"}}))
}

func TestEvaluateDeterministic(t *testing.T) {
	rule := geoScenario()[1].Conditional
	for i := 0; i < 5; i++ {
		assert.True(t, Evaluate(rule, nil, []any{}))
		assert.False(t, Evaluate(rule, nil, []string{"area-42"}))
	}
}

func TestEvaluateEmptyRulePasses(t *testing.T) {
	assert.True(t, Evaluate(nil, nil, nil))
	assert.True(t, Evaluate(&widget.Conditional{ParentWidget: "1"}, nil, "x"))
}

func cond(key string, order int, op string, value any, conj widget.Conjunction) widget.Condition {
	return widget.Condition{Key: key, Order: order, Operator: op, Value: value, ConjunctionOperator: conj}
}

func TestConjunctions(t *testing.T) {
	// NUMBER value 5: gt 3 is true, lt 3 is false
	yes := func(key string, order int, conj widget.Conjunction) widget.Condition {
		return cond(key, order, OpNumberGreaterThan, 3.0, conj)
	}
	no := func(key string, order int, conj widget.Conjunction) widget.Condition {
		return cond(key, order, OpNumberLessThan, 3.0, conj)
	}

	tests := []struct {
		name       string
		conditions []widget.Condition
		want       bool
	}{
		{"and true true", []widget.Condition{yes("a", 1, widget.ConjunctionAnd), yes("b", 2, "")}, true},
		{"and true false", []widget.Condition{yes("a", 1, widget.ConjunctionAnd), no("b", 2, "")}, false},
		{"or false true", []widget.Condition{no("a", 1, widget.ConjunctionOr), yes("b", 2, "")}, true},
		{"or false false", []widget.Condition{no("a", 1, widget.ConjunctionOr), no("b", 2, "")}, false},
		{"xor", []widget.Condition{yes("a", 1, widget.ConjunctionXor), no("b", 2, "")}, true},
		{"nor", []widget.Condition{no("a", 1, widget.ConjunctionNor), no("b", 2, "")}, true},
		{"nand", []widget.Condition{yes("a", 1, widget.ConjunctionNand), yes("b", 2, "")}, false},
		{"nxor", []widget.Condition{no("a", 1, widget.ConjunctionNxor), no("b", 2, "")}, true},
		{
			// left fold: (true OR false) AND false
			"left fold",
			[]widget.Condition{yes("a", 1, widget.ConjunctionOr), no("b", 2, widget.ConjunctionAnd), no("c", 3, "")},
			false,
		},
		{
			// conditions are folded by Order, not slice position
			"sorted by order",
			[]widget.Condition{no("c", 3, ""), yes("a", 1, widget.ConjunctionAnd), yes("b", 2, widget.ConjunctionOr)},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &widget.Conditional{ParentWidget: "n", ParentWidgetType: widget.TypeNumber, Conditions: tt.conditions}
			assert.Equal(t, tt.want, Evaluate(rule, nil, 5.0))
		})
	}
}

func TestOperators(t *testing.T) {
	lo, hi := 1.0, 5.0
	scale := &widget.Widget{ID: "s", Type: widget.TypeScale, Properties: &widget.Properties{
		Options: []widget.Option{{Key: "low", Order: 1}, {Key: "mid", Order: 2}, {Key: "high", Order: 3}},
	}}
	org := &widget.Widget{ID: "o", Type: widget.TypeOrganigram, Properties: &widget.Properties{
		Organigram: &widget.OrganigramNode{Key: "root", Children: []*widget.OrganigramNode{
			{Key: "health", Children: []*widget.OrganigramNode{{Key: "clinic"}}},
			{Key: "wash"},
		}},
	}}
	number := &widget.Widget{ID: "n", Type: widget.TypeNumber, Properties: &widget.Properties{MinValue: &lo, MaxValue: &hi}}

	matrix1D := map[string]any{
		"r1": map[string]any{"c1": true, "c2": false},
		"r2": map[string]any{},
	}
	matrix2D := map[string]any{
		"r1": map[string]any{
			"sr1": map[string]any{"col1": []any{"sc1"}},
			"sr2": map[string]any{},
		},
	}

	tests := []struct {
		name   string
		t      widget.Type
		parent *widget.Widget
		c      widget.Condition
		value  any
		want   bool
	}{
		{"number gt", widget.TypeNumber, number, widget.Condition{Operator: OpNumberGreaterThan, Value: 2}, 3.0, true},
		{"number eq string", widget.TypeNumber, number, widget.Condition{Operator: OpNumberEqualTo, Value: 3.0}, "3", true},
		{"number nil", widget.TypeNumber, number, widget.Condition{Operator: OpNumberLessThan, Value: 3.0}, nil, false},
		{"text starts", widget.TypeText, nil, widget.Condition{Operator: OpTextStartsWith, Value: "flo"}, "Flood report", true},
		{"text ends", widget.TypeText, nil, widget.Condition{Operator: OpTextEndsWith, Value: "REPORT"}, "Flood report", true},
		{"text contains", widget.TypeText, nil, widget.Condition{Operator: OpTextContains, Value: "drought"}, "Flood report", false},
		{"text empty needle", widget.TypeText, nil, widget.Condition{Operator: OpTextContains, Value: ""}, "Flood", false},
		{"date after", widget.TypeDate, nil, widget.Condition{Operator: OpDateAfter, Value: "2024-01-01"}, "2024-01-02", true},
		{"date equal ignores time", widget.TypeDate, nil, widget.Condition{Operator: OpDateEqualTo, Value: "2024-01-02"}, "2024-01-02T10:00:00", true},
		{"date bad", widget.TypeDate, nil, widget.Condition{Operator: OpDateBefore, Value: "2024-01-01"}, "yesterday", false},
		{"time before", widget.TypeTime, nil, widget.Condition{Operator: OpTimeBefore, Value: "12:00"}, "09:30:00", true},
		{"time equal", widget.TypeTime, nil, widget.Condition{Operator: OpTimeEqualTo, Value: "09:30"}, "09:30:00", true},
		{
			"date range includes", widget.TypeDateRange, nil,
			widget.Condition{Operator: OpDateRangeIncludes, Value: "2024-03-10"},
			map[string]any{"startDate": "2024-03-01", "endDate": "2024-03-31"}, true,
		},
		{
			"date range open end", widget.TypeDateRange, nil,
			widget.Condition{Operator: OpDateRangeIncludes, Value: "2030-01-01"},
			map[string]any{"startDate": "2024-03-01"}, true,
		},
		{
			"date range after", widget.TypeDateRange, nil,
			widget.Condition{Operator: OpDateRangeAfter, Value: "2024-01-01"},
			map[string]any{"startDate": "2024-03-01", "endDate": "2024-03-31"}, true,
		},
		{
			"date range before missing end", widget.TypeDateRange, nil,
			widget.Condition{Operator: OpDateRangeBefore, Value: "2025-01-01"},
			map[string]any{"startDate": "2024-03-01"}, false,
		},
		{
			"time range includes", widget.TypeTimeRange, nil,
			widget.Condition{Operator: OpTimeRangeIncludes, Value: "13:00"},
			map[string]any{"startTime": "09:00", "endTime": "17:00"}, true,
		},
		{"select", widget.TypeSelect, nil, widget.Condition{Operator: OpSingleSelectionSelected, Value: []any{"a", "b"}}, "b", true},
		{"select none", widget.TypeSelect, nil, widget.Condition{Operator: OpSingleSelectionSelected, Value: []any{"a"}}, nil, false},
		{
			"multi some", widget.TypeMultiSelect, nil,
			widget.Condition{Operator: OpMultiSelectionSelected, Value: []string{"a", "z"}, OperatorModifier: widget.ModifierSome},
			[]any{"a", "b"}, true,
		},
		{
			"multi every", widget.TypeMultiSelect, nil,
			widget.Condition{Operator: OpMultiSelectionSelected, Value: []string{"a", "z"}, OperatorModifier: widget.ModifierEvery},
			[]any{"a", "b"}, false,
		},
		{"scale selected", widget.TypeScale, scale, widget.Condition{Operator: OpScaleSelected, Value: []any{"mid"}}, "mid", true},
		{"scale at least", widget.TypeScale, scale, widget.Condition{Operator: OpScaleMoreThan, Value: "mid"}, "high", true},
		{"scale at least equal", widget.TypeScale, scale, widget.Condition{Operator: OpScaleMoreThan, Value: "mid"}, "mid", true},
		{"scale at most", widget.TypeScale, scale, widget.Condition{Operator: OpScaleLessThan, Value: "low"}, "mid", false},
		{"scale unknown key", widget.TypeScale, scale, widget.Condition{Operator: OpScaleLessThan, Value: "nope"}, "mid", false},
		{
			"organigram descendent", widget.TypeOrganigram, org,
			widget.Condition{Operator: OpOrganigramDescendentSelected, Value: []any{"health"}},
			[]any{"clinic"}, true,
		},
		{
			"organigram descendent every", widget.TypeOrganigram, org,
			widget.Condition{Operator: OpOrganigramDescendentSelected, Value: []any{"health", "wash"}, OperatorModifier: widget.ModifierEvery},
			[]any{"clinic"}, false,
		},
		{
			"organigram selected", widget.TypeOrganigram, org,
			widget.Condition{Operator: OpOrganigramSelected, Value: []any{"wash"}},
			[]any{"wash"}, true,
		},
		{"matrix1d rows", widget.TypeMatrix1D, nil, widget.Condition{Operator: OpMatrix1DRowsSelected, Value: []any{"r2"}}, matrix1D, false},
		{"matrix1d cells", widget.TypeMatrix1D, nil, widget.Condition{Operator: OpMatrix1DCellsSelected, Value: []any{"c1"}}, matrix1D, true},
		{"matrix1d cell unset", widget.TypeMatrix1D, nil, widget.Condition{Operator: OpMatrix1DCellsSelected, Value: []any{"c2"}}, matrix1D, false},
		{"matrix2d rows", widget.TypeMatrix2D, nil, widget.Condition{Operator: OpMatrix2DRowsSelected, Value: []any{"r1"}}, matrix2D, true},
		{"matrix2d sub-rows", widget.TypeMatrix2D, nil, widget.Condition{Operator: OpMatrix2DSubRowsSelected, Value: []any{"sr2"}}, matrix2D, false},
		{"matrix2d columns", widget.TypeMatrix2D, nil, widget.Condition{Operator: OpMatrix2DColumnsSelected, Value: []any{"col1"}}, matrix2D, true},
		{"matrix2d sub-columns", widget.TypeMatrix2D, nil, widget.Condition{Operator: OpMatrix2DSubColumnsSelected, Value: []any{"sc1"}}, matrix2D, true},
		{"geo empty", widget.TypeGeo, nil, widget.Condition{Operator: OpEmpty}, nil, true},
		{"range empty", widget.TypeDateRange, nil, widget.Condition{Operator: OpEmpty}, map[string]any{"startDate": nil}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.Key = "k"
			tt.c.Order = 1
			rule := &widget.Conditional{ParentWidget: "p", ParentWidgetType: tt.t, Conditions: []widget.Condition{tt.c}}
			assert.Equal(t, tt.want, Evaluate(rule, tt.parent, tt.value))
		})
	}
}

func TestUnknownOperatorIsFalseAndLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	widgets := []widget.Widget{
		{ID: "1", Type: widget.TypeGeo},
		{ID: "2", Type: widget.TypeText, Conditional: &widget.Conditional{
			ParentWidget:     "1",
			ParentWidgetType: widget.TypeGeo,
			Conditions:       []widget.Condition{{Key: "c1", Order: 1, Operator: OpNumberGreaterThan, Invert: true}},
		}},
	}
	engine := NewEngine(widgets, WithLogger(zap.New(core)))

	assert.False(t, engine.Visible("2", map[string]any{"1": []any{}}))
	assert.Equal(t, 1, logs.FilterMessage("operator not available for parent type").Len())
}

func TestUnresolvedParentIsVisible(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	widgets := []widget.Widget{
		{ID: "2", Type: widget.TypeText, Conditional: &widget.Conditional{
			ParentWidget:     "gone",
			ParentWidgetType: widget.TypeGeo,
			Conditions:       []widget.Condition{widget.DefaultCondition("c1")},
		}},
	}
	engine := NewEngine(widgets, WithLogger(zap.New(core)))

	assert.True(t, engine.Visible("2", map[string]any{"gone": []any{"x"}}))
	assert.Equal(t, 1, logs.FilterMessage("conditional parent not found").Len())
}

func TestEngineEvaluateUnresolvedParentPasses(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	engine := NewEngine(nil, WithLogger(zap.New(core)))
	rule := &widget.Conditional{
		ParentWidget:     "gone",
		ParentWidgetType: widget.TypeGeo,
		Conditions:       []widget.Condition{widget.DefaultCondition("c1")},
	}

	assert.True(t, engine.Evaluate(rule, []any{"area-42"}))
	assert.Equal(t, 1, logs.FilterMessage("conditional parent not found").Len())

	widgets := geoScenario()
	resolved := NewEngine(widgets)
	assert.False(t, resolved.Evaluate(widgets[1].Conditional, []any{"area-42"}))
	assert.True(t, resolved.Evaluate(widgets[1].Conditional, []any{}))
}

func TestConditionalWrapperDefersToTarget(t *testing.T) {
	parent := &widget.Widget{ID: "p", Type: widget.TypeConditional, Properties: &widget.Properties{TargetType: widget.TypeNumber}}
	rule := &widget.Conditional{
		ParentWidget:     "p",
		ParentWidgetType: widget.TypeConditional,
		Conditions:       []widget.Condition{{Key: "c", Order: 1, Operator: OpNumberGreaterThan, Value: 1.0}},
	}
	assert.True(t, Evaluate(rule, parent, 2.0))
}

func TestVisibility(t *testing.T) {
	engine := NewEngine(geoScenario())
	got := engine.Visibility(map[string]any{"1": []any{"area-42"}})
	assert.Equal(t, map[string]bool{"1": true, "2": false}, got)
}

func TestRun(t *testing.T) {
	input := `{
		"widgets": [
			{"id": "1", "clientId": "w1", "widgetType": "GEO", "order": 1},
			{"id": "2", "clientId": "w2", "widgetType": "TEXT", "order": 2,
			 "conditional": {"parentWidget": "1", "parentWidgetType": "GEO",
			   "conditions": [{"key": "c1", "order": 1, "operator": "empty", "invert": false, "conjunctionOperator": "AND"}]}}
		],
		"values": {"1": []}
	}`

	out, err := Run(input)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, map[string]bool{"1": true, "2": true}, doc.Visibility)
	assert.Len(t, doc.Widgets, 2)

	records := `{
		"records": [
			{"id": "2", "title": "Notes", "widgetId": "TEXT", "order": 5,
			 "conditional": {"parentWidget": "1", "parentWidgetType": "GEO",
			   "conditions": [{"key": "c1", "order": 1, "operator": "empty", "conjunctionOperator": "AND"}]}},
			{"id": "1", "title": "Area", "widgetId": "GEO", "order": 2}
		],
		"values": {"1": ["area-42"]}
	}`
	out, err = Run(records)
	require.NoError(t, err)
	doc = Document{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, map[string]bool{"1": true, "2": false}, doc.Visibility)
	require.Len(t, doc.Widgets, 2)
	assert.Equal(t, "1", doc.Widgets[0].ID)
	assert.Empty(t, doc.Records)

	_, err = Run(`{"widgets":[{"id":"1"}],"records":[{"id":"2"}]}`)
	assert.Error(t, err)

	_, err = Run("{")
	assert.Error(t, err)
}

func TestOperatorsCatalog(t *testing.T) {
	for _, typ := range widget.Types {
		ops := Operators(typ)
		if !typ.Conditionable() {
			assert.Nil(t, ops, typ)
			continue
		}
		require.NotEmpty(t, ops, typ)
		assert.Equal(t, OpEmpty, ops[0].Key, typ)
	}

	ops := Operators(widget.TypeGeo)
	ops[0].Label = "mutated"
	assert.Equal(t, "Is empty", Operators(widget.TypeGeo)[0].Label)

	op, ok := Lookup(widget.TypeMultiSelect, OpMultiSelectionSelected)
	require.True(t, ok)
	assert.True(t, op.Modifier)
	_, ok = Lookup(widget.TypeGeo, OpTextContains)
	assert.False(t, ok)
}
