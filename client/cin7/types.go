package cin7

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProductID accepts both numeric and string identifiers from the API.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*id = ProductID(s)
	return nil
}

func (id ProductID) String() string { return string(id) }

// BOMLine references a component by ERP id when known, otherwise by SKU.
type BOMLine struct {
	ComponentProductID ProductID `json:"ComponentProductID,omitempty"`
	ProductCode        string    `json:"ProductCode,omitempty"`
	Quantity           float64   `json:"Quantity"`
}

// Product is the ERP product payload. Assembly flags are always serialized.
type Product struct {
	ID                           ProductID          `json:"ID,omitempty"`
	SKU                          string             `json:"SKU"`
	Name                         string             `json:"Name"`
	Category                     string             `json:"Category"`
	Description                  string             `json:"Description"`
	UOM                          string             `json:"UOM"`
	CostingMethod                string             `json:"CostingMethod"`
	Type                         string             `json:"Type"`
	Status                       string             `json:"Status"`
	DefaultLocation              string             `json:"DefaultLocation"`
	RevenueAccount               string             `json:"RevenueAccount"`
	InventoryAccount             string             `json:"InventoryAccount"`
	COGSAccount                  string             `json:"COGSAccount"`
	Sellable                     bool               `json:"Sellable"`
	BillOfMaterial               bool               `json:"BillOfMaterial"`
	AutoAssembly                 bool               `json:"AutoAssembly"`
	QuantityToProduce            int                `json:"QuantityToProduce,omitempty"`
	AssemblyCostEstimationMethod string             `json:"AssemblyCostEstimationMethod,omitempty"`
	BillOfMaterialsProducts      []BOMLine          `json:"BillOfMaterialsProducts,omitempty"`
	PriceTiers                   map[string]float64 `json:"PriceTiers"`
	AdditionalAttribute1         string             `json:"AdditionalAttribute1,omitempty"`
	AdditionalAttribute4         string             `json:"AdditionalAttribute4,omitempty"`
	InternalNote                 string             `json:"InternalNote,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of a mutating call.
type Result struct {
	Status  string   `json:"status"`
	Data    *Product `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
}

func (r Result) OK() bool { return r.Status == StatusSuccess }

// batchResponse is one entry of the API's array response to POST/PUT.
type batchResponse struct {
	Success bool      `json:"success"`
	ID      ProductID `json:"id"`
	Code    string    `json:"code"`
	Errors  []string  `json:"errors"`
}

func parseBatch(raw []byte) (batchResponse, error) {
	var rows []batchResponse
	if err := json.Unmarshal(raw, &rows); err != nil {
		return batchResponse{}, fmt.Errorf("decode batch response: %w", err)
	}
	if len(rows) == 0 {
		return batchResponse{}, fmt.Errorf("empty batch response")
	}
	return rows[0], nil
}

// BOMUpload associates components with an assembly.
type BOMUpload struct {
	ProductID  ProductID `json:"ProductID"`
	Components []BOMLine `json:"Components"`
}
