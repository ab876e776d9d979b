// Package dto defines the response bodies of the /iou endpoints.
package dto

import (
	iouDomain "github.com/allisson/iou/internal/iou/domain"
)

// CreateIouResponse is returned by POST /iou/:amount/:payee.
type CreateIouResponse struct {
	Iou *iouDomain.IouDetails `json:"iou"`
}

// AmountResponse carries an amount owed.
type AmountResponse struct {
	Amount float64 `json:"amount"`
}
