package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"contracthub/middleware"
	"contracthub/model"
	"contracthub/pkg/apperr"
	"contracthub/service"
)

type ContractHandler struct {
	contracts *service.ContractService
}

func NewContractHandler(contracts *service.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type CreateContractRequest struct {
	ContractNo string   `json:"contractNo"`
	Title      string   `json:"title"`
	PartyA     string   `json:"partyA"`
	PartyB     string   `json:"partyB"`
	Amount     *float64 `json:"amount"`
	Status     string   `json:"status"`
}

func (r *CreateContractRequest) validate() []string {
	var errs []string
	if r.ContractNo == "" {
		errs = append(errs, "contractNo is required")
	}
	if r.Title == "" {
		errs = append(errs, "title is required")
	}
	if r.PartyA == "" {
		errs = append(errs, "partyA is required")
	}
	if r.PartyB == "" {
		errs = append(errs, "partyB is required")
	}
	if r.Amount == nil {
		errs = append(errs, "amount is required")
	} else if *r.Amount < 0 {
		errs = append(errs, "amount must not be negative")
	}
	if r.Status != "" && !model.ValidStatus(r.Status) {
		errs = append(errs, "status must be one of DRAFT, PENDING, APPROVED, REJECTED, ARCHIVED")
	}
	return errs
}

type UpdateContractRequest struct {
	ContractNo *string  `json:"contractNo"`
	Title      *string  `json:"title"`
	PartyA     *string  `json:"partyA"`
	PartyB     *string  `json:"partyB"`
	Amount     *float64 `json:"amount"`
	Status     *string  `json:"status"`
}

func (r *UpdateContractRequest) validate() []string {
	var errs []string
	if r.ContractNo != nil && *r.ContractNo == "" {
		errs = append(errs, "contractNo must not be empty")
	}
	if r.Amount != nil && *r.Amount < 0 {
		errs = append(errs, "amount must not be negative")
	}
	if r.Status != nil && !model.ValidStatus(*r.Status) {
		errs = append(errs, "status must be one of DRAFT, PENDING, APPROVED, REJECTED, ARCHIVED")
	}
	return errs
}

type ApproveRequest struct {
	Status string `json:"status"`
}

// SearchResult is the payload of the list endpoint.
type SearchResult struct {
	Items []model.Contract `json:"items"`
	Total int64            `json:"total"`
}

// Create handles POST /contracts. The creator is recorded from the token.
func (h *ContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		failValidation(c, errs)
		return
	}

	contract := &model.Contract{
		ContractNo: req.ContractNo,
		Title:      req.Title,
		PartyA:     req.PartyA,
		PartyB:     req.PartyB,
		Amount:     *req.Amount,
		Status:     req.Status,
	}
	if user := middleware.CurrentUser(c); user != nil {
		contract.CreatedByID = &user.ID
	}

	created, err := h.contracts.Create(c.Request.Context(), contract)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "contract created", created)
}

// List handles GET /contracts with optional conjunctive filters and
// 1-indexed pagination.
func (h *ContractHandler) List(c *gin.Context) {
	filter, errs := parseSearchFilter(c)
	if len(errs) > 0 {
		failValidation(c, errs)
		return
	}

	items, total, err := h.contracts.Search(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []model.Contract{}
	}

	respond(c, http.StatusOK, "contracts retrieved", SearchResult{Items: items, Total: total})
}

// Get handles GET /contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "contract retrieved", contract)
}

// Update handles PUT /contracts/:id with a partial merge.
func (h *ContractHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var req UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		failValidation(c, errs)
		return
	}

	updated, err := h.contracts.Update(c.Request.Context(), id, service.UpdateFields{
		ContractNo: req.ContractNo,
		Title:      req.Title,
		PartyA:     req.PartyA,
		PartyB:     req.PartyB,
		Amount:     req.Amount,
		Status:     req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "contract updated", updated)
}

// Delete handles DELETE /contracts/:id; deleting an absent id succeeds.
func (h *ContractHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.contracts.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "contract deleted", nil)
}

// Approve handles PUT /contracts/:id/approve
func (h *ContractHandler) Approve(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if req.Status == "" {
		fail(c, apperr.Validation("status is required"))
		return
	}

	contract, err := h.contracts.Approve(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "contract status updated", contract)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("id must be a positive integer")
	}
	return uint(id), nil
}

// parseSearchFilter converts query parameters into a SearchFilter, collecting
// every malformed value so the caller gets one complete message.
func parseSearchFilter(c *gin.Context) (service.SearchFilter, []string) {
	var errs []string

	filter := service.SearchFilter{
		Title:  c.Query("title"),
		Status: c.Query("status"),
		Page:   1,
		Limit:  10,
	}

	if raw := c.Query("minAmount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, "minAmount must be a number")
		} else {
			filter.MinAmount = &v
		}
	}
	if raw := c.Query("maxAmount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, "maxAmount must be a number")
		} else {
			filter.MaxAmount = &v
		}
	}
	if raw := c.Query("startDate"); raw != "" {
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errs = append(errs, "startDate must be formatted as YYYY-MM-DD")
		} else {
			filter.StartDate = &v
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errs = append(errs, "endDate must be formatted as YYYY-MM-DD")
		} else {
			filter.EndDate = &v
		}
	}
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, "page must be an integer")
		} else {
			filter.Page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, "limit must be an integer")
		} else {
			filter.Limit = v
		}
	}

	return filter, errs
}
