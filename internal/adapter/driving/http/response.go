package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/catalogapi/internal/application"
	"github.com/ericfisherdev/catalogapi/internal/domain/model"
)

const unexpectedErrorMessage = "An unexpected error occurred."

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"` + unexpectedErrorMessage + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// errorResponse is the standard error response body. Error carries internal
// detail and is only populated outside production.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ProductResponse is the JSON representation of a product.
type ProductResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Size     string  `json:"size"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// ProductAddedResponse is returned when a single product was inserted.
type ProductAddedResponse struct {
	Message      string `json:"message"`
	ProductID    int64  `json:"productId"`
	AffectedRows int64  `json:"affectedRows"`
}

// ProductsAddedResponse is returned when several products were inserted.
type ProductsAddedResponse struct {
	Message       string  `json:"message"`
	ProductIDs    []int64 `json:"productIds"`
	TotalInserted int64   `json:"totalInserted"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// toProductResponse converts a domain Product to its JSON response representation.
func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Color:    p.Color,
		Size:     p.Size,
		ImageURL: p.ImageURL,
		Price:    p.Price,
	}
}

// toInsertResponse picks the single or batch response shape by the number of
// inserted products.
func toInsertResponse(res model.InsertResult) any {
	if len(res.IDs) == 1 {
		return ProductAddedResponse{
			Message:      "Product added successfully",
			ProductID:    res.IDs[0],
			AffectedRows: res.AffectedRows,
		}
	}

	ids := res.IDs
	if ids == nil {
		ids = []int64{}
	}
	return ProductsAddedResponse{
		Message:       "Products added successfully",
		ProductIDs:    ids,
		TotalInserted: res.AffectedRows,
	}
}

// toHealthResponse converts an application HealthReport to its JSON representation.
func toHealthResponse(r application.HealthReport) HealthResponse {
	return HealthResponse{
		Status:   r.Status,
		Database: r.Database,
		Time:     r.CheckedAt.UTC().Format(time.RFC3339),
	}
}
