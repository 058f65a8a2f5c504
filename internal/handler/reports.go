package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/jx"

	"github.com/ovenline/pizzeria/internal/domain/report"
)

// dateOnly is the short form accepted for report bounds. A date-only end
// bound extends to the last second of that day, so ?start=X&end=X covers
// the whole day X.
const dateOnly = "2006-01-02"

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	window, ok := reportWindow(w, r.URL.Query(), h.now())
	if !ok {
		return
	}

	h.mu.Lock()
	summary := report.Build(h.queue.History(), h.catalog, window)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeSummary(e, summary)
	})
}

// reportWindow resolves the query into a time window: either one of the
// period presets or an explicit start/end range. On a bad request it writes
// the error response and returns false.
func reportWindow(w http.ResponseWriter, query url.Values, now time.Time) (report.Window, bool) {
	start, end := query.Get("start"), query.Get("end")
	period := query.Get("period")

	if start == "" && end == "" {
		switch period {
		case "day":
			return report.LastDay(now), true
		case "week":
			return report.LastWeek(now), true
		case "month":
			return report.LastMonth(now), true
		case "", "all":
			return report.AllHistory(now), true
		default:
			writeError(w, http.StatusUnprocessableEntity, "invalid_request", "period must be day, week, month or all")
			return report.Window{}, false
		}
	}

	if period != "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "period cannot be combined with start or end")
		return report.Window{}, false
	}

	window := report.AllHistory(now)
	if start != "" {
		t, err := parseBound(start, false)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid_request", "start must be RFC 3339 or "+dateOnly)
			return report.Window{}, false
		}
		window.Start = t
	}
	if end != "" {
		t, err := parseBound(end, true)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid_request", "end must be RFC 3339 or "+dateOnly)
			return report.Window{}, false
		}
		window.End = t
	}
	if window.End.Before(window.Start) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "start must not be after end")
		return report.Window{}, false
	}
	return window, true
}

// parseBound accepts a full RFC 3339 timestamp or a bare date. Bare dates
// name whole days, so an end bound lands on 23:59:59 of that day.
func parseBound(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

func encodeSummary(e *jx.Encoder, s report.Summary) {
	e.ObjStart()
	e.FieldStart("window")
	e.ObjStart()
	e.FieldStart("start")
	e.Str(s.Window.Start.Format(timeFormat))
	e.FieldStart("end")
	e.Str(s.Window.End.Format(timeFormat))
	e.ObjEnd()
	e.FieldStart("total_orders")
	e.Int(s.TotalOrders)
	e.FieldStart("total_revenue")
	e.Str(s.TotalRevenue.StringFixed(2))
	e.FieldStart("top_flavors")
	encodeCounts(e, s.TopFlavors)
	e.FieldStart("top_add_ons")
	encodeCounts(e, s.TopAddOns)
	e.FieldStart("sizes")
	e.ArrStart()
	for _, sz := range s.Sizes {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(sz.Label)
		e.FieldStart("count")
		e.Int(sz.Count)
		e.FieldStart("percent")
		e.Float64(sz.Percent)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("daily")
	e.ArrStart()
	for _, d := range s.Daily {
		e.ObjStart()
		e.FieldStart("day")
		e.Str(d.Day)
		e.FieldStart("count")
		e.Int(d.Count)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeCounts(e *jx.Encoder, counts []report.Count) {
	e.ArrStart()
	for _, c := range counts {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(c.Name)
		e.FieldStart("count")
		e.Int(c.Count)
		e.ObjEnd()
	}
	e.ArrEnd()
}
