package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/service/catalog"
)

// CatalogHandler exposes catalog and staff directory endpoints.
type CatalogHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

// NewCatalogHandler constructs the HTTP handler adapter.
func NewCatalogHandler(svc *catalog.Service, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

type namedRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type childRequest struct {
	ParentID    string `json:"parentId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type productRequest struct {
	BrandID    string `json:"brandId" binding:"required"`
	ModelID    string `json:"modelId" binding:"required"`
	VariantID  string `json:"variantId"`
	CategoryID string `json:"categoryId" binding:"required"`
	RangeID    string `json:"rangeId"`
	VendorID   string `json:"vendorId"`

	ProductName      string `json:"productName" binding:"required"`
	Color            string `json:"color"`
	Finish           string `json:"finish"`
	SKU              string `json:"sku"`
	Barcode          string `json:"barcode"`
	VendorPartNumber string `json:"vendorPartNumber"`

	StockQty      int    `json:"stockQty"`
	ReorderLevel  *int   `json:"reorderLevel"`
	MinStockLevel *int   `json:"minStockLevel"`
	MaxStockLevel *int   `json:"maxStockLevel"`
	Unit          string `json:"unit"`

	PurchasePrice float64  `json:"purchasePrice"`
	SellingPrice  float64  `json:"sellingPrice"`
	MRP           float64  `json:"mrp"`
	GSTRate       *float64 `json:"gstRate"`

	WarehouseLocation string `json:"warehouseLocation"`
	RackNumber        string `json:"rackNumber"`
	BinNumber         string `json:"binNumber"`
	Description       string `json:"description"`
	Warranty          string `json:"warranty"`
	Notes             string `json:"notes"`

	PerformedBy string `json:"performedBy"`
}

type productPatchRequest struct {
	ProductName       *string  `json:"productName"`
	SKU               *string  `json:"sku"`
	Barcode           *string  `json:"barcode"`
	ReorderLevel      *int     `json:"reorderLevel"`
	MinStockLevel     *int     `json:"minStockLevel"`
	MaxStockLevel     *int     `json:"maxStockLevel"`
	Unit              *string  `json:"unit"`
	PurchasePrice     *float64 `json:"purchasePrice"`
	SellingPrice      *float64 `json:"sellingPrice"`
	MRP               *float64 `json:"mrp"`
	GSTRate           *float64 `json:"gstRate"`
	WarehouseLocation *string  `json:"warehouseLocation"`
	RackNumber        *string  `json:"rackNumber"`
	BinNumber         *string  `json:"binNumber"`
	Description       *string  `json:"description"`
	Warranty          *string  `json:"warranty"`
	Notes             *string  `json:"notes"`
	IsActive          *bool    `json:"isActive"`
}

// CreateBrand handles POST /brands.
func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	brand, err := h.svc.CreateBrand(c.Request.Context(), req.Name, req.Description)
	h.created(c, brand, err)
}

// ListBrands handles GET /brands.
func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, err := h.svc.ListBrands(c.Request.Context())
	h.ok(c, brands, err)
}

// CreateVehicleModel handles POST /models; parentId is the brand.
func (h *CatalogHandler) CreateVehicleModel(c *gin.Context) {
	var req childRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	brandID, err := primitive.ObjectIDFromHex(req.ParentID)
	if err != nil {
		badRequest(c, h.logger, "invalid parentId", err)
		return
	}
	model, err := h.svc.CreateVehicleModel(c.Request.Context(), brandID, req.Name, req.Description)
	h.created(c, model, err)
}

// ListVehicleModels handles GET /models?brandId=.
func (h *CatalogHandler) ListVehicleModels(c *gin.Context) {
	brandID, err := optionalObjectID(c.Query("brandId"))
	if err != nil {
		badRequest(c, h.logger, "invalid brandId", err)
		return
	}
	list, err := h.svc.ListVehicleModels(c.Request.Context(), brandID)
	h.ok(c, list, err)
}

// CreateVariant handles POST /variants; parentId is the model.
func (h *CatalogHandler) CreateVariant(c *gin.Context) {
	var req childRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	modelID, err := primitive.ObjectIDFromHex(req.ParentID)
	if err != nil {
		badRequest(c, h.logger, "invalid parentId", err)
		return
	}
	variant, err := h.svc.CreateVariant(c.Request.Context(), modelID, models.VariantName(req.Name), req.Description)
	h.created(c, variant, err)
}

// ListVariants handles GET /variants?modelId=.
func (h *CatalogHandler) ListVariants(c *gin.Context) {
	modelID, err := optionalObjectID(c.Query("modelId"))
	if err != nil {
		badRequest(c, h.logger, "invalid modelId", err)
		return
	}
	list, err := h.svc.ListVariants(c.Request.Context(), modelID)
	h.ok(c, list, err)
}

// CreateCategory handles POST /categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), req.Name, req.Description)
	h.created(c, category, err)
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context())
	h.ok(c, list, err)
}

// CreateRange handles POST /ranges.
func (h *CatalogHandler) CreateRange(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	rg, err := h.svc.CreateRange(c.Request.Context(), req.Name, req.Description)
	h.created(c, rg, err)
}

// ListRanges handles GET /ranges.
func (h *CatalogHandler) ListRanges(c *gin.Context) {
	list, err := h.svc.ListRanges(c.Request.Context())
	h.ok(c, list, err)
}

// CreateVendor handles POST /vendors.
func (h *CatalogHandler) CreateVendor(c *gin.Context) {
	var req models.Vendor
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	vendor, err := h.svc.CreateVendor(c.Request.Context(), req)
	h.created(c, vendor, err)
}

// ListVendors handles GET /vendors.
func (h *CatalogHandler) ListVendors(c *gin.Context) {
	list, err := h.svc.ListVendors(c.Request.Context())
	h.ok(c, list, err)
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}

	in, err := req.toNewProduct()
	if err != nil {
		badRequest(c, h.logger, "invalid id in request body", err)
		return
	}
	product, err := h.svc.CreateProduct(c.Request.Context(), in)
	h.created(c, product, err)
}

// ListProducts handles GET /products?brandId=&categoryId=&status=&active=.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Status:     models.ProductStatus(c.Query("status")),
		ActiveOnly: c.Query("active") == "true",
	}
	var err error
	if filter.BrandID, err = optionalObjectID(c.Query("brandId")); err != nil {
		badRequest(c, h.logger, "invalid brandId", err)
		return
	}
	if filter.CategoryID, err = optionalObjectID(c.Query("categoryId")); err != nil {
		badRequest(c, h.logger, "invalid categoryId", err)
		return
	}
	list, err := h.svc.ListProducts(c.Request.Context(), filter)
	h.ok(c, list, err)
}

// GetProduct handles GET /products/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(c.Request.Context(), id)
	h.ok(c, product, err)
}

// UpdateProduct handles PATCH /products/:id.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req productPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}

	product, err := h.svc.UpdateProductDetails(c.Request.Context(), id, catalog.ProductPatch(req))
	h.ok(c, product, err)
}

// CreateUser handles POST /users.
func (h *CatalogHandler) CreateUser(c *gin.Context) {
	var req models.User
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), req)
	h.created(c, user, err)
}

// ListUsers handles GET /users.
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	list, err := h.svc.ListUsers(c.Request.Context())
	h.ok(c, list, err)
}

func (h *CatalogHandler) created(c *gin.Context, body interface{}, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, body)
}

func (h *CatalogHandler) ok(c *gin.Context, body interface{}, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (r productRequest) toNewProduct() (catalog.NewProduct, error) {
	in := catalog.NewProduct{
		ProductName:       r.ProductName,
		Color:             r.Color,
		Finish:            r.Finish,
		SKU:               r.SKU,
		Barcode:           r.Barcode,
		VendorPartNumber:  r.VendorPartNumber,
		OpeningStock:      r.StockQty,
		ReorderLevel:      r.ReorderLevel,
		MinStockLevel:     r.MinStockLevel,
		MaxStockLevel:     r.MaxStockLevel,
		Unit:              r.Unit,
		PurchasePrice:     r.PurchasePrice,
		SellingPrice:      r.SellingPrice,
		MRP:               r.MRP,
		GSTRate:           r.GSTRate,
		WarehouseLocation: r.WarehouseLocation,
		RackNumber:        r.RackNumber,
		BinNumber:         r.BinNumber,
		Description:       r.Description,
		Warranty:          r.Warranty,
		Notes:             r.Notes,
	}

	var err error
	if in.BrandID, err = primitive.ObjectIDFromHex(r.BrandID); err != nil {
		return in, err
	}
	if in.ModelID, err = primitive.ObjectIDFromHex(r.ModelID); err != nil {
		return in, err
	}
	if in.CategoryID, err = primitive.ObjectIDFromHex(r.CategoryID); err != nil {
		return in, err
	}
	if in.VariantID, err = optionalObjectID(r.VariantID); err != nil {
		return in, err
	}
	if in.RangeID, err = optionalObjectID(r.RangeID); err != nil {
		return in, err
	}
	if in.VendorID, err = optionalObjectID(r.VendorID); err != nil {
		return in, err
	}
	if r.PerformedBy != "" {
		if in.PerformedBy, err = primitive.ObjectIDFromHex(r.PerformedBy); err != nil {
			return in, err
		}
	}
	return in, nil
}
