package reports

import (
	"net/http"
	"time"

	"github.com/loopplatform/merchant-pulse/api/validators"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/enums"
	"github.com/loopplatform/merchant-pulse/pkg/pagination"
)

// maxMinDaysLive bounds the min_days_live filter. Ten years of tenure is
// already older than any live contract in the program.
const maxMinDaysLive = 3650

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

// filterQuery carries the string filters shared by the list and export
// endpoints so the validator can bound them before the service runs.
type filterQuery struct {
	Vertical string `json:"vertical" validate:"omitempty,max=120"`
	Tier     string `json:"tier" validate:"omitempty,oneof=exceeding meeting slightly_below significantly_below"`
}

func parseFilters(r *http.Request) (filterQuery, error) {
	query := r.URL.Query()
	filters := filterQuery{
		Vertical: validators.SanitizeString(query.Get("vertical"), 0),
		Tier:     validators.SanitizeString(query.Get("tier"), 0),
	}
	if err := validators.ValidateStruct(&filters); err != nil {
		return filterQuery{}, err
	}
	return filters, nil
}

func parseWindow(r *http.Request, defaults config.ReportsConfig) (int, error) {
	maxWindow := defaults.MaxWindowWeeks
	if maxWindow <= 0 {
		maxWindow = reports.DefaultMaxWindowWeeks
	}
	return validators.ParseQueryInt(r, "window", defaults.DefaultWindowWeeks, 1, maxWindow)
}

func parseMinDaysLive(r *http.Request, defaults config.ReportsConfig) (int, error) {
	return validators.ParseQueryInt(r, "min_days_live", defaults.DefaultMinDaysLive, 0, maxMinDaysLive)
}

func parseListParams(r *http.Request, defaults config.ReportsConfig) (reports.ListParams, error) {
	window, err := parseWindow(r, defaults)
	if err != nil {
		return reports.ListParams{}, err
	}
	minDaysLive, err := parseMinDaysLive(r, defaults)
	if err != nil {
		return reports.ListParams{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return reports.ListParams{}, err
	}
	filters, err := parseFilters(r)
	if err != nil {
		return reports.ListParams{}, err
	}
	return reports.ListParams{
		Window:      window,
		MinDaysLive: minDaysLive,
		Vertical:    filters.Vertical,
		Tier:        enums.PerformanceTier(filters.Tier),
		Params: pagination.Params{
			Limit:  limit,
			Cursor: validators.SanitizeString(r.URL.Query().Get("cursor"), 0),
		},
	}, nil
}

func parseSummaryParams(r *http.Request, defaults config.ReportsConfig) (reports.SummaryParams, error) {
	window, err := parseWindow(r, defaults)
	if err != nil {
		return reports.SummaryParams{}, err
	}
	minDaysLive, err := parseMinDaysLive(r, defaults)
	if err != nil {
		return reports.SummaryParams{}, err
	}
	return reports.SummaryParams{Window: window, MinDaysLive: minDaysLive}, nil
}

func parseExportParams(r *http.Request, defaults config.ReportsConfig) (reports.ExportParams, error) {
	window, err := parseWindow(r, defaults)
	if err != nil {
		return reports.ExportParams{}, err
	}
	minDaysLive, err := parseMinDaysLive(r, defaults)
	if err != nil {
		return reports.ExportParams{}, err
	}
	filters, err := parseFilters(r)
	if err != nil {
		return reports.ExportParams{}, err
	}
	return reports.ExportParams{
		Window:      window,
		MinDaysLive: minDaysLive,
		Vertical:    filters.Vertical,
		Tier:        enums.PerformanceTier(filters.Tier),
	}, nil
}
