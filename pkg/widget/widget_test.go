package widget

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTypeValid(t *testing.T) {
	for _, typ := range Types {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, Type("SLIDER").Valid())
	assert.False(t, Type("").Valid())

	assert.True(t, TypeGeo.Conditionable())
	assert.False(t, TypeConditional.Conditionable())
}

func TestConjunctionReserved(t *testing.T) {
	tests := []struct {
		c        Conjunction
		valid    bool
		reserved bool
	}{
		{ConjunctionAnd, true, false},
		{ConjunctionOr, true, false},
		{ConjunctionXor, true, true},
		{ConjunctionNor, true, true},
		{ConjunctionNand, true, true},
		{ConjunctionNxor, true, true},
		{Conjunction("MAYBE"), false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.c.Valid(), tt.c)
		assert.Equal(t, tt.reserved, tt.c.Reserved(), tt.c)
	}
}

func TestNewConditional(t *testing.T) {
	parent := Widget{ID: "2", ClientID: "c2", Type: TypeGeo}
	rule := NewConditional(parent, "k1")

	require.Len(t, rule.Conditions, 1)
	assert.Equal(t, "2", rule.ParentWidget)
	assert.Equal(t, TypeGeo, rule.ParentWidgetType)
	assert.Equal(t, Condition{
		Key:                 "k1",
		Operator:            "empty",
		Order:               1,
		ConjunctionOperator: ConjunctionAnd,
	}, rule.Conditions[0])
}

func TestNewClientIDUnique(t *testing.T) {
	a, b := NewClientID(), NewClientID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestConditionalClone(t *testing.T) {
	orig := &Conditional{
		ParentWidget:     "1",
		ParentWidgetType: TypeText,
		Conditions:       []Condition{DefaultCondition("a")},
	}
	cp := orig.Clone()
	cp.Conditions[0].Operator = "text-contains"
	cp.Conditions = append(cp.Conditions, DefaultCondition("b"))

	assert.Equal(t, "empty", orig.Conditions[0].Operator)
	assert.Len(t, orig.Conditions, 1)

	var nilRule *Conditional
	assert.Nil(t, nilRule.Clone())
}

func TestConditionalRefresh(t *testing.T) {
	widgets := []Widget{
		{ID: "1", ClientID: "a", Type: TypeNumber},
	}
	rule := &Conditional{ParentWidget: "1", ParentWidgetType: TypeGeo}
	require.True(t, rule.Refresh(widgets))
	assert.Equal(t, TypeNumber, rule.ParentWidgetType)

	stale := &Conditional{ParentWidget: "9", ParentWidgetType: TypeGeo}
	assert.False(t, stale.Refresh(widgets))
	assert.Equal(t, TypeGeo, stale.ParentWidgetType)
}

func TestChildren(t *testing.T) {
	widgets := []Widget{
		{ID: "1", ClientID: "a", Type: TypeGeo},
		{ID: "2", ClientID: "b", Type: TypeText, Conditional: &Conditional{ParentWidget: "1"}},
		{ID: "3", ClientID: "c", Type: TypeText, Conditional: &Conditional{ParentWidget: "1"}},
		{ID: "4", ClientID: "d", Type: TypeText},
	}
	assert.Len(t, Children(widgets, "1"), 2)
	assert.Empty(t, Children(widgets, "4"))
	assert.Empty(t, Children(widgets, ""))

	w, ok := FindByKey(widgets, "c")
	require.True(t, ok)
	assert.Equal(t, "3", w.ID)
	assert.True(t, w.IsChild())
}

func TestOptionListTolerance(t *testing.T) {
	var nilProps *Properties
	assert.Equal(t, []Option{}, nilProps.OptionList(TypeSelect))
	assert.Equal(t, []Option{}, (&Properties{}).OptionList(TypeOrganigram))

	props := &Properties{Organigram: &OrganigramNode{
		Key: "root", Label: "Root",
		Children: []*OrganigramNode{
			{Key: "a", Label: "A", Children: []*OrganigramNode{{Key: "a1", Label: "A1"}}},
			nil,
			{Key: "b", Label: "B"},
		},
	}}
	keys := make([]string, 0)
	for _, o := range props.OptionList(TypeOrganigram) {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"root", "a", "a1", "b"}, keys)
	assert.Equal(t, []string{"a", "a1"}, props.Organigram.Find("a").Descendants())
	assert.Nil(t, props.Organigram.Find("zzz"))
}

func TestRecordRoundTrip(t *testing.T) {
	widgets := []Widget{
		{
			ID: "10", ClientID: "sel", Key: "sel", Title: "Sector", Type: TypeSelect,
			Properties: &Properties{Options: []Option{{Key: "wash", Label: "WASH", Order: 1}}},
			Order:      1, Width: WidthHalf,
		},
		{
			ID: "11", ClientID: "org", Key: "org", Title: "Org", Type: TypeOrganigram,
			Properties: &Properties{Organigram: &OrganigramNode{Key: "r", Label: "R", Children: []*OrganigramNode{{Key: "c", Label: "C"}}}},
			Order:      2, Width: WidthFull,
		},
		{
			ClientID: "num", Key: "num", Title: "People", Type: TypeNumber,
			Properties: &Properties{MinValue: ptr(0.0), MaxValue: ptr(100.0)},
			Conditional: &Conditional{
				ParentWidget: "10", ParentWidgetType: TypeSelect,
				Conditions: []Condition{{
					Key: "k", Operator: "single-selection-selected", Order: 1,
					ConjunctionOperator: ConjunctionAnd,
				}},
			},
			Order: 3,
		},
	}

	for _, w := range widgets {
		rec, err := ToRecord(w)
		require.NoError(t, err)
		assert.Equal(t, w.Type, rec.WidgetID)

		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		var decoded Record
		require.NoError(t, json.Unmarshal(raw, &decoded))

		back, err := FromRecord(decoded)
		require.NoError(t, err)
		if diff := cmp.Diff(w, back); diff != "" {
			t.Errorf("round trip of %s mismatch (-want +got):\n%s", w.ClientID, diff)
		}
	}
}

func TestToRecordWithoutClientID(t *testing.T) {
	rec, err := ToRecord(Widget{ID: "5", ClientID: "c5", Key: "c5", Type: TypeText}, WithoutClientID())
	require.NoError(t, err)
	assert.Empty(t, rec.ClientID)

	back, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "5", back.ClientID)
	assert.Equal(t, "5", back.Key)
}

func TestFromRecordMalformedOptions(t *testing.T) {
	rec := Record{
		ID:         "1",
		ClientID:   "org",
		WidgetID:   TypeOrganigram,
		Properties: json.RawMessage(`{"options": [1, 2, 3]}`),
	}
	w, err := FromRecord(rec)
	require.NoError(t, err)
	require.NotNil(t, w.Properties)
	assert.Nil(t, w.Properties.Organigram)
	assert.Equal(t, []Option{}, w.Properties.OptionList(TypeOrganigram))

	rec.Properties = json.RawMessage(`{"options": null}`)
	w, err = FromRecord(rec)
	require.NoError(t, err)
	assert.Nil(t, w.Properties.Organigram)

	rec.WidgetID = TypeSelect
	rec.Properties = json.RawMessage(`{"options": {"key": "x"}}`)
	w, err = FromRecord(rec)
	require.NoError(t, err)
	assert.Empty(t, w.Properties.Options)

	rec.Properties = json.RawMessage(`{not json`)
	_, err = FromRecord(rec)
	assert.Error(t, err)
}

func TestFrameworkResolve(t *testing.T) {
	var f Framework
	require.NoError(t, json.Unmarshal([]byte(`{"records":[
		{"id":"2","clientId":"b","title":"Sector","widgetId":"SELECT","order":7,"properties":{"options":[{"key":"x","label":"X"}]}},
		{"id":"1","title":"People","widgetId":"NUMBER","order":3}
	]}`), &f))

	widgets, err := f.Resolve()
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, "1", widgets[0].ClientID, "client id falls back to id")
	assert.Equal(t, 1, widgets[0].Order)
	assert.Equal(t, "b", widgets[1].Key)
	assert.Equal(t, 2, widgets[1].Order)
	assert.Equal(t, "X", widgets[1].Properties.Options[0].Label)

	local, err := Framework{Widgets: []Widget{{ClientID: "a", Order: 4}}}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 1, local[0].Order)

	_, err = Framework{Widgets: local, Records: f.Records}.Resolve()
	assert.Error(t, err)
}
