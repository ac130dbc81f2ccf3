package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
)

// SearchGroup serves the unauthenticated browse surface.
type SearchGroup struct {
	catalog *service.CatalogService
}

func NewSearchGroup(catalog *service.CatalogService) *SearchGroup {
	return &SearchGroup{catalog: catalog}
}

func (h *SearchGroup) Name() string { return "search" }

func (h *SearchGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpGetCitiesCatalog,
		protocol.OpGetCityMaps,
		protocol.OpSearchByCityName,
		protocol.OpSearchByPoiName,
		protocol.OpSearchByCityAndPoi,
	}
}

type searchPayload struct {
	CityID    int64  `json:"cityId,omitempty"`
	CityQuery string `json:"cityQuery,omitempty"`
	PoiQuery  string `json:"poiQuery,omitempty"`
}

func (h *SearchGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	if req.Type == protocol.OpGetCitiesCatalog {
		cities, err := h.catalog.GetCatalog(ctx)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, cities)
	}

	var p searchPayload
	if err := req.Bind(&p); err != nil {
		return protocol.ErrResponse(req, err)
	}

	switch req.Type {
	case protocol.OpGetCityMaps:
		maps, err := h.catalog.GetCityMaps(ctx, p.CityID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, maps)

	case protocol.OpSearchByCityName:
		results, err := h.catalog.SearchByCityName(ctx, p.CityQuery)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, results)

	case protocol.OpSearchByPoiName:
		results, err := h.catalog.SearchByPoiName(ctx, p.PoiQuery)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, results)

	case protocol.OpSearchByCityAndPoi:
		results, err := h.catalog.SearchByCityAndPoi(ctx, p.CityQuery, p.PoiQuery)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, results)
	}
	return nil
}
