package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/bind"
	"github.com/shashiranjanraj/campusmart/pkg/middleware"
	"github.com/shashiranjanraj/campusmart/pkg/reqid"
	"github.com/shashiranjanraj/campusmart/pkg/response"
	"github.com/shashiranjanraj/campusmart/pkg/storage"
)

// maxImageBytes caps product image uploads.
const maxImageBytes = 8 << 20 // 8 MB

// ProductController serves the catalog.
type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index lists the catalog, optionally filtered by category.
// GET /api/products?category=electronics
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// Show returns one product with seller info. GET /api/products/{id}
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	product, err := c.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"product": product})
}

// Create lists a new product owned by the authenticated user.
// POST /api/products
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	product, err := c.catalog.Create(r.Context(), middleware.UserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"product": product})
}

// UploadImage stores a product image on the configured disk and returns its
// public URL for use in a subsequent Create call.
// POST /api/products/images (multipart, field "image")
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		response.Error(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	path := fmt.Sprintf("products/%s%s", reqid.New(), ext)
	if err := storage.PutStream(path, io.LimitReader(file, maxImageBytes)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Created(w, map[string]string{"imageUrl": storage.URL(path)})
}
