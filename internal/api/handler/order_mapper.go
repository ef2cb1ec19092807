package handler

import (
	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// --- Request → Service input ---

func toOrderItemInputs(items []orderItemRequest) []ports.OrderItemInput {
	out := make([]ports.OrderItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, ports.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return out
}

// --- Domain → Response ---

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		PharmacyID:         o.PharmacyID,
		RiderID:            o.RiderID,
		Status:             string(o.Status),
		Items:              o.Items,
		Total:              o.Total,
		CancellationReason: o.CancellationReason,
		AcceptedAt:         o.AcceptedAt,
		PickedUpAt:         o.PickedUpAt,
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func toStockChangeResponses(changes []domain.StockChange) []stockChangeResponse {
	out := make([]stockChangeResponse, 0, len(changes))
	for _, ch := range changes {
		out = append(out, stockChangeResponse{
			ProductID: ch.ProductID,
			OldStock:  ch.OldStock,
			NewStock:  ch.NewStock,
			Quantity:  ch.Quantity,
		})
	}
	return out
}

func toIssueMessages(issues []domain.StockIssue) []string {
	if len(issues) == 0 {
		return nil
	}
	return domain.StockCheck{Issues: issues}.Errors()
}
