package dto

import (
	"scanflow/internal/domain/barcode"
)

// DecodeRequest asks for a barcode to be decoded without a document.
type DecodeRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// DecodeResponse is a decoded identity.
type DecodeResponse struct {
	Scheme     barcode.Scheme `json:"scheme"`
	Raw        string         `json:"raw"`
	GTIN       string         `json:"gtin,omitempty"`
	Serial     string         `json:"serial,omitempty"`
	Batch      string         `json:"batch,omitempty"`
	Expiry     string         `json:"expiry,omitempty"`
	ExpiryDate string         `json:"expiryDate,omitempty"`
	NHRN       string         `json:"nhrn,omitempty"`
	Check      string         `json:"check,omitempty"`
	Weight     string         `json:"weight,omitempty"`
	WeightKg   string         `json:"weightKg,omitempty"`
	MRC        string         `json:"mrc,omitempty"`
	IsMark     bool           `json:"isMark"`
	Error      string         `json:"error,omitempty"`
}

// FromIdentity builds the response for id.
func FromIdentity(id barcode.Identity) DecodeResponse {
	resp := DecodeResponse{
		Scheme: id.Scheme,
		Raw:    id.Raw,
		GTIN:   id.GTIN,
		Serial: id.Serial,
		Batch:  id.Batch,
		Expiry: id.Expiry,
		NHRN:   id.NHRN,
		Check:  id.Check,
		Weight: id.Weight,
		MRC:    id.MRC,
		IsMark: id.IsMark(),
		Error:  id.Error,
	}
	if d, ok := id.ExpiryDate(); ok {
		resp.ExpiryDate = d.Format("2006-01-02")
	}
	if w, err := id.WeightKg(); err == nil {
		resp.WeightKg = w.String()
	}
	return resp
}
