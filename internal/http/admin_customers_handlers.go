package httpapi

import (
	"net/http"
	"strings"

	"housecare-data/internal/domain"
	"housecare-data/internal/models"
	"housecare-data/internal/repository"
)

// CustomersHandler 顾客管理 API
type CustomersHandler struct {
	customers repository.CustomersRepository
}

func NewCustomersHandler(customers repository.CustomersRepository) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

type customerRequest struct {
	CustomerName string `json:"customer_name"`
	Kana         string `json:"kana"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Status       string `json:"status"`
}

// ServeCollection 处理 /admin/api/v1/customers
func (h *CustomersHandler) ServeCollection(w http.ResponseWriter, r *http.Request, tenantID string) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, tenantID)
	case http.MethodPost:
		h.create(w, r, tenantID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ServeItem 处理 /admin/api/v1/customers/{id}
func (h *CustomersHandler) ServeItem(w http.ResponseWriter, r *http.Request, tenantID string) {
	customerID := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/customers/")
	if customerID == "" || strings.Contains(customerID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, tenantID, customerID)
	case http.MethodPut:
		h.update(w, r, tenantID, customerID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	q := r.URL.Query()
	filters := &repository.CustomerFilters{
		Status:  q.Get("status"),
		Keyword: q.Get("keyword"),
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	customers, total, err := h.customers.ListCustomers(r.Context(), tenantID, filters, page, size)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to list customers"))
		return
	}

	items := make([]map[string]any, 0, len(customers))
	for _, c := range customers {
		items = append(items, customerView(c))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":      items,
		"total":      total,
		"pagination": models.BackendPagination{Size: size, Page: page, Count: total},
	}))
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request, tenantID, customerID string) {
	c, err := h.customers.GetCustomer(r.Context(), tenantID, customerID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("customer not found"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(customerView(c)))
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request, tenantID string) {
	var req customerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	id, err := h.customers.CreateCustomer(r.Context(), tenantID, &domain.Customer{
		CustomerName: req.CustomerName,
		Kana:         req.Kana,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Status:       req.Status,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"customer_id": id}))
}

func (h *CustomersHandler) update(w http.ResponseWriter, r *http.Request, tenantID, customerID string) {
	var req customerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	err := h.customers.UpdateCustomer(r.Context(), tenantID, customerID, &domain.Customer{
		CustomerName: req.CustomerName,
		Kana:         req.Kana,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Status:       req.Status,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"customer_id": customerID}))
}

func customerView(c *domain.Customer) map[string]any {
	return map[string]any{
		"customer_id":   c.CustomerID,
		"customer_name": c.CustomerName,
		"kana":          c.Kana,
		"email":         c.Email,
		"phone":         c.Phone,
		"address":       c.Address,
		"status":        c.Status,
		"created_at":    c.CreatedAt,
		"updated_at":    c.UpdatedAt,
	}
}
