package domain

import (
	"fmt"
	"strings"
)

// StockIssueReason classifies why a requested line cannot be served.
type StockIssueReason string

const (
	StockIssueNotFound     StockIssueReason = "product_not_found"
	StockIssueInactive     StockIssueReason = "product_inactive"
	StockIssueInsufficient StockIssueReason = "insufficient_stock"
)

// StockIssue is the per-line diagnostic of an availability check.
type StockIssue struct {
	ProductID string           `json:"product_id"`
	Reason    StockIssueReason `json:"reason"`
	Requested int              `json:"requested"`
	Available int              `json:"available"`
	Shortfall int              `json:"shortfall,omitempty"`
	Message   string           `json:"message"`
}

// StockCheck is the aggregate result of checking a list of requested lines.
// Available is true only if every line has sufficient, active stock.
type StockCheck struct {
	Available bool         `json:"available"`
	Issues    []StockIssue `json:"issues,omitempty"`
}

// Errors returns the human-readable messages of all failing lines.
func (c StockCheck) Errors() []string {
	msgs := make([]string, 0, len(c.Issues))
	for _, is := range c.Issues {
		msgs = append(msgs, is.Message)
	}
	return msgs
}

// StockChange reports one applied stock mutation (reservation or release).
type StockChange struct {
	ProductID string `json:"product_id"`
	OldStock  int    `json:"old_stock"`
	NewStock  int    `json:"new_stock"`
	Quantity  int    `json:"quantity"`
}

// StockError carries the full itemized list of stock problems. Multi-line
// operations fail with the whole list, never just the first cause.
type StockError struct {
	Issues []StockIssue
}

func (e *StockError) Error() string {
	if len(e.Issues) == 0 {
		return "stock error"
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Message)
	}
	return "stock error: " + strings.Join(msgs, "; ")
}

// NewStockIssue builds a StockIssue with a rendered message for the given reason.
func NewStockIssue(productID string, reason StockIssueReason, requested, available int) StockIssue {
	issue := StockIssue{
		ProductID: productID,
		Reason:    reason,
		Requested: requested,
		Available: available,
	}
	switch reason {
	case StockIssueNotFound:
		issue.Message = fmt.Sprintf("product %s not found", productID)
	case StockIssueInactive:
		issue.Message = fmt.Sprintf("product %s is no longer available", productID)
	case StockIssueInsufficient:
		issue.Shortfall = requested - available
		issue.Message = fmt.Sprintf("product %s: requested %d, only %d available (short %d)",
			productID, requested, available, issue.Shortfall)
	}
	return issue
}
