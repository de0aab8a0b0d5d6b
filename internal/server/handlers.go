package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dlovans/tagform/internal/config"
	"github.com/dlovans/tagform/internal/errs"
	"github.com/dlovans/tagform/internal/logging"
	"github.com/dlovans/tagform/pkg/condition"
	"github.com/dlovans/tagform/pkg/editor"
	"github.com/dlovans/tagform/pkg/filter"
	"github.com/dlovans/tagform/pkg/form"
	"github.com/dlovans/tagform/pkg/helpers"
	"github.com/dlovans/tagform/pkg/lint"
	"github.com/dlovans/tagform/pkg/widget"
)

type handlers struct {
	cfg *config.Config
	loc *time.Location
}

func (h *handlers) FrameworkRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/evaluate", h.Evaluate)
	r.Post("/lint", h.Lint)
	r.Post("/reorder", h.Reorder)
	return r
}

func (h *handlers) EditorRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/open", h.OpenEditor)
	r.Post("/save", h.SaveRule)
	return r
}

func (h *handlers) FilterRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/inputs", h.FilterInputs)
	r.Post("/validate", h.ValidateFilters)
	r.Post("/describe", h.DescribeFilters)
	r.Post("/query", h.QueryVariables)
	return r
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *handlers) Health(w http.ResponseWriter, r *http.Request) {
	errs.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

type widgetTypeEntry struct {
	Type      widget.Type          `json:"type"`
	Operators []condition.Operator `json:"operators"`
}

// WidgetTypes lists each parent widget type with the operators it offers.
func (h *handlers) WidgetTypes(w http.ResponseWriter, r *http.Request) {
	out := make([]widgetTypeEntry, 0, len(widget.Types))
	for _, t := range widget.Types {
		if !t.Conditionable() {
			continue
		}
		out = append(out, widgetTypeEntry{Type: t, Operators: condition.Operators(t)})
	}
	errs.WriteSuccess(w, r, http.StatusOK, out)
}

type evaluateRequest struct {
	widget.Framework
	Values map[string]any `json:"values"`
}

type evaluateResponse struct {
	Visibility map[string]bool `json:"visibility"`
}

func (h *handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	widgets, err := resolve(req.Framework)
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	engine := condition.NewEngine(widgets, condition.WithLogger(logging.FromContext(r.Context())))
	errs.WriteSuccess(w, r, http.StatusOK, evaluateResponse{Visibility: engine.Visibility(req.Values)})
}

func resolve(f widget.Framework) ([]widget.Widget, error) {
	widgets, err := f.Resolve()
	if err != nil {
		return nil, errs.NewValidationError(err.Error())
	}
	return widgets, nil
}

func (h *handlers) Lint(w http.ResponseWriter, r *http.Request) {
	var req widget.Framework
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	widgets, err := resolve(req)
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	errs.WriteSuccess(w, r, http.StatusOK, lint.Widgets(widgets))
}

type reorderRequest struct {
	Widgets []widget.Widget `json:"widgets"`
	Keys    []string        `json:"keys"`
}

// Reorder arranges widgets by client id and returns the storage records to
// persist.
func (h *handlers) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	widgets, err := widget.Reorder(req.Widgets, req.Keys)
	if err != nil {
		errs.HandleError(w, r, errs.NewValidationError(err.Error()))
		return
	}
	records := make([]widget.Record, 0, len(widgets))
	for _, wd := range widgets {
		rec, err := widget.ToRecord(wd)
		if err != nil {
			errs.HandleError(w, r, err)
			return
		}
		records = append(records, rec)
	}
	errs.WriteSuccess(w, r, http.StatusOK, map[string]any{"records": records})
}

type editorRequest struct {
	WidgetID string              `json:"widgetId"`
	Widgets  []widget.Widget     `json:"widgets"`
	Value    *widget.Conditional `json:"value"`
	ParentID *string             `json:"parentId,omitempty"` // select or clear a parent first
}

type editorView struct {
	State      string               `json:"state"`
	Message    string               `json:"message,omitempty"`
	Candidates []widget.Widget      `json:"candidates"`
	Operators  []condition.Operator `json:"operators,omitempty"`
	CanAdd     bool                 `json:"canAdd"`
	CanRemove  bool                 `json:"canRemove"`
	Value      *widget.Conditional  `json:"value"`
	Errors     *form.Error          `json:"errors,omitempty"`
}

func (h *handlers) session(r *http.Request, req editorRequest, onSave func(*widget.Conditional)) (*editor.Session, error) {
	if req.WidgetID == "" {
		return nil, errs.NewValidationError("widgetId is required")
	}
	if _, ok := widget.FindByKey(req.Widgets, req.WidgetID); !ok {
		return nil, errs.NewNotFoundError("widget " + req.WidgetID + " not found")
	}
	s := editor.Open(req.WidgetID, req.Widgets, req.Value, editor.Options{
		Logger: logging.FromContext(r.Context()),
		OnSave: onSave,
	})
	if req.ParentID != nil {
		s.SelectParent(*req.ParentID)
	}
	return s, nil
}

func view(s *editor.Session) editorView {
	v := editorView{
		State:      s.State().String(),
		Message:    s.Message(),
		Candidates: s.Candidates(),
		Value:      s.Value(),
	}
	if v.Candidates == nil {
		v.Candidates = []widget.Widget{}
	}
	if e := s.Editor(); e != nil {
		v.Operators = e.Operators()
		v.CanAdd = e.CanAdd()
		v.CanRemove = e.CanRemove()
		if res := e.Validate(); res.Errored {
			v.Errors = res.Error
		}
	}
	return v
}

// OpenEditor opens a rule editing session and returns its initial view.
func (h *handlers) OpenEditor(w http.ResponseWriter, r *http.Request) {
	var req editorRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	s, err := h.session(r, req, nil)
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	errs.WriteSuccess(w, r, http.StatusOK, view(s))
}

// SaveRule validates a rule and returns it ready for persistence.
func (h *handlers) SaveRule(w http.ResponseWriter, r *http.Request) {
	var req editorRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	var saved *widget.Conditional
	s, err := h.session(r, req, func(rule *widget.Conditional) { saved = rule })
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	if err := s.Save(); err != nil {
		var formErr *form.Error
		switch {
		case errors.Is(err, editor.ErrChildBlocked):
			err = errs.NewConflictError(s.Message())
		case errors.As(err, &formErr):
			err = errs.NewFormError(formErr)
		}
		errs.HandleError(w, r, err)
		return
	}
	child, _ := widget.FindByKey(req.Widgets, req.WidgetID)
	child.Conditional = saved
	record, err := widget.ToRecord(child)
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	errs.WriteSuccess(w, r, http.StatusOK, map[string]any{"value": saved, "record": record})
}

type filterRequest struct {
	widget.Framework
	Values     []filter.Value `json:"values"`
	AllVisible *bool          `json:"allVisible,omitempty"`
}

func (req filterRequest) filters() ([]filter.Filter, error) {
	widgets, err := resolve(req.Framework)
	if err != nil {
		return nil, err
	}
	return filter.FromWidgets(widgets), nil
}

func (h *handlers) builder(r *http.Request) *filter.Builder {
	return filter.NewBuilder(
		filter.WithLogger(logging.FromContext(r.Context())),
		filter.WithLocation(h.loc),
	)
}

func (h *handlers) FilterInputs(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	filters, err := req.filters()
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	allVisible := helpers.ValueOr(req.AllVisible, h.cfg.Filters.AllVisible)
	inputs := h.builder(r).Inputs(filters, req.Values, allVisible)
	errs.WriteSuccess(w, r, http.StatusOK, inputs)
}

func (h *handlers) ValidateFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	filters, err := req.filters()
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	if res := filter.Validate(filters, req.Values); res.Errored {
		errs.HandleError(w, r, errs.NewFormError(res.Error))
		return
	}
	errs.WriteSuccess(w, r, http.StatusOK, map[string]any{"values": req.Values})
}

func (h *handlers) DescribeFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	filters, err := req.filters()
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	chips := h.builder(r).Describe(filters, req.Values)
	if chips == nil {
		chips = []filter.Chip{}
	}
	errs.WriteSuccess(w, r, http.StatusOK, chips)
}

type queryRequest struct {
	widget.Framework
	ProjectID string       `json:"projectId"`
	Query     filter.Query `json:"query"`
}

// QueryVariables validates the framework filters and assembles the query
// payload.
func (h *handlers) QueryVariables(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		errs.HandleError(w, r, err)
		return
	}
	if req.ProjectID == "" {
		errs.HandleError(w, r, errs.NewValidationError("projectId is required"))
		return
	}
	widgets, err := resolve(req.Framework)
	if err != nil {
		errs.HandleError(w, r, err)
		return
	}
	filters := filter.FromWidgets(widgets)
	if req.Query.EntriesFilterData != nil {
		if res := filter.Validate(filters, req.Query.EntriesFilterData.FilterableData); res.Errored {
			errs.HandleError(w, r, errs.NewFormError(res.Error))
			return
		}
	}
	errs.WriteSuccess(w, r, http.StatusOK, h.builder(r).QueryVariables(req.ProjectID, req.Query, filters))
}
