// Package dto holds the request and response bodies of the HTTP API.
package dto

import (
	"strings"

	"scanflow/internal/domain/scanning"
)

// ScanRequest is one scan sent by a device.
type ScanRequest struct {
	Barcode   string `json:"barcode" binding:"required"`
	CellID    string `json:"cellId"`
	TableType string `json:"tableType"`
}

// ToDomain converts the body to a scanning request. Any cell field selects
// the address-storage worker.
func (r ScanRequest) ToDomain(documentID string) scanning.ScanRequest {
	req := scanning.ScanRequest{DocumentID: documentID, Raw: r.Barcode}
	if r.CellID != "" || r.TableType != "" {
		req.Location = &scanning.Location{
			CellID:    strings.TrimSpace(r.CellID),
			TableType: scanning.TableType(strings.ToLower(r.TableType)),
		}
	}
	return req
}

// ScanResponse reports the outcome of a scan.
type ScanResponse struct {
	Status      scanning.Kind      `json:"status"`
	Error       scanning.Kind      `json:"error,omitempty"`
	Description string             `json:"description"`
	RowKey      string             `json:"rowKey,omitempty"`
	Staged      scanning.Mutations `json:"staged"`
}

// FromResult builds the response for res.
func FromResult(res scanning.Result) ScanResponse {
	return ScanResponse{
		Status:      res.Kind,
		Error:       res.Failure(),
		Description: res.Description,
		RowKey:      res.RowKey,
		Staged:      res.Staged,
	}
}
