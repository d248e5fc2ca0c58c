package handler

import (
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/amai2222/shipment-data-view-sub003/internal/interfaces/http/dto"
)

// resolveScopeAndFilter converts a selection payload and its filter into the
// domain types. The filter only matters for an all-filtered selection, but it
// is converted unconditionally so invalid input fails the same way in every
// mode.
func resolveScopeAndFilter(selection dto.SelectionRequest, query dto.WaybillFilterQuery) (settlement.Scope, waybill.Filter, error) {
	scope, err := selection.ToScope()
	if err != nil {
		return settlement.Scope{}, waybill.Filter{}, err
	}
	filter, err := query.ToFilter()
	if err != nil {
		return settlement.Scope{}, waybill.Filter{}, err
	}
	return scope, filter, nil
}
