package dto

import (
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/dashboard"
)

type DashboardItemDTO struct {
	Product ProductResponse          `json:"product"`
	Actions valueobject.Capabilities `json:"actions"`
}

type DashboardResponse struct {
	Counters dashboard.Counters `json:"counters"`
	Items    []DashboardItemDTO `json:"items"`
}

func ToDashboardResponse(s *dashboard.Summary) DashboardResponse {
	items := make([]DashboardItemDTO, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, DashboardItemDTO{
			Product: ToProductResponse(item.Product),
			Actions: item.Actions,
		})
	}
	return DashboardResponse{Counters: s.Counters, Items: items}
}
